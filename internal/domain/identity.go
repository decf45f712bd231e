package domain

import "time"

// Role selects which workflow a caller may use.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleAdmin       Role = "admin"
	RoleElectrician Role = "electrician"
)

// Valid reports whether r can sign in.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleElectrician
}

// Identity is an allow-listed admin or electrician account.
type Identity struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	Role         Role
}

// Name returns the display name used as the ticket assignee.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Username
}

// Session is the server-side record behind a bearer token.
type Session struct {
	ID          string    `json:"id"`
	IdentityID  string    `json:"identity_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Name returns the display name the session acts under.
func (s *Session) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Username
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
