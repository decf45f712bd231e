package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/desivolt/muzdesk/internal/domain"
)

// AccountEntry is one allow-listed login as written in the accounts file.
// Password is accepted for local setups only and is hashed on load.
type AccountEntry struct {
	ID           string `yaml:"id"`
	Username     string `yaml:"username"`
	DisplayName  string `yaml:"display_name"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
	Password     string `yaml:"password"`
}

// AccountsFile is the YAML document behind ACCOUNTS_FILE.
type AccountsFile struct {
	Accounts []AccountEntry      `yaml:"accounts"`
	Prices   []domain.PriceEntry `yaml:"prices"`
}

// DevAccounts is the allow-list used when no accounts file is configured.
var DevAccounts = []AccountEntry{
	{ID: "admin1", Username: "admin1", Role: string(domain.RoleAdmin), Password: "admin"},
	{ID: "elec1", Username: "elec1", Role: string(domain.RoleElectrician), Password: "password"},
	{ID: "elec2", Username: "elec2", Role: string(domain.RoleElectrician), Password: "password"},
}

// LoadAccountsFile reads and validates the allow-list file.
func LoadAccountsFile(path string) (*AccountsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var file AccountsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Validate checks that every account can sign in and usernames are unique.
func (f *AccountsFile) Validate() error {
	if len(f.Accounts) == 0 {
		return fmt.Errorf("accounts file lists no accounts")
	}
	seen := make(map[string]struct{}, len(f.Accounts))
	for i, acct := range f.Accounts {
		if strings.TrimSpace(acct.Username) == "" {
			return fmt.Errorf("account %d: username is required", i)
		}
		if _, dup := seen[acct.Username]; dup {
			return fmt.Errorf("account %q: duplicate username", acct.Username)
		}
		seen[acct.Username] = struct{}{}
		if !domain.Role(acct.Role).Valid() {
			return fmt.Errorf("account %q: role must be admin or electrician", acct.Username)
		}
		if acct.PasswordHash == "" && acct.Password == "" {
			return fmt.Errorf("account %q: password_hash is required", acct.Username)
		}
	}
	for _, p := range f.Prices {
		if p.Appliance == "" || p.Charge < 0 {
			return fmt.Errorf("price entry %q is invalid", p.Appliance)
		}
	}
	return nil
}
