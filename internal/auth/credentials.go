package auth

import (
	"errors"
	"fmt"
	"sort"

	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/domain"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Directory is the allow-list of admin and electrician accounts.
type Directory struct {
	byUsername map[string]domain.Identity
	byID       map[string]domain.Identity
	order      []string
	// decoy is compared against for unknown usernames so both failures cost a bcrypt round.
	decoy string
}

// NewDirectory builds the allow-list. Entries that carry a plaintext password
// are hashed with cost before use.
func NewDirectory(entries []config.AccountEntry, cost int) (*Directory, error) {
	decoy, err := HashPassword("muzdesk-unknown-account", cost)
	if err != nil {
		return nil, err
	}
	dir := &Directory{
		byUsername: make(map[string]domain.Identity, len(entries)),
		byID:       make(map[string]domain.Identity, len(entries)),
		decoy:      decoy,
	}
	for _, entry := range entries {
		role := domain.Role(entry.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("account %q: unsupported role %q", entry.Username, entry.Role)
		}
		if _, dup := dir.byUsername[entry.Username]; dup {
			return nil, fmt.Errorf("account %q: duplicate username", entry.Username)
		}

		hash := entry.PasswordHash
		if hash != "" {
			if _, err := PasswordCost(hash); err != nil {
				return nil, fmt.Errorf("account %q: %w", entry.Username, err)
			}
		} else {
			hashed, err := HashPassword(entry.Password, cost)
			if err != nil {
				return nil, fmt.Errorf("account %q: %w", entry.Username, err)
			}
			hash = hashed
		}

		id := entry.ID
		if id == "" {
			id = entry.Username
		}
		identity := domain.Identity{
			ID:           id,
			Username:     entry.Username,
			DisplayName:  entry.DisplayName,
			PasswordHash: hash,
			Role:         role,
		}
		dir.byUsername[identity.Username] = identity
		dir.byID[identity.ID] = identity
		dir.order = append(dir.order, identity.ID)
	}
	return dir, nil
}

// Authenticate matches the username exactly and compares the password hash.
func (d *Directory) Authenticate(username, password string) (*domain.Identity, error) {
	identity, ok := d.byUsername[username]
	if !ok {
		_ = ComparePassword(d.decoy, password)
		return nil, ErrInvalidCredentials
	}
	if err := ComparePassword(identity.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &identity, nil
}

// Lookup returns the identity with the given id.
func (d *Directory) Lookup(id string) (*domain.Identity, bool) {
	identity, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &identity, true
}

// Electricians lists electrician identities sorted by display name.
func (d *Directory) Electricians() []domain.Identity {
	return d.withRole(domain.RoleElectrician)
}

func (d *Directory) withRole(role domain.Role) []domain.Identity {
	var out []domain.Identity
	for _, id := range d.order {
		if identity := d.byID[id]; identity.Role == role {
			out = append(out, identity)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}
