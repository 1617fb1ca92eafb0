package core

import "time"

// Challenge is a pending proof-of-value challenge for one Bitcoin address.
// At most one challenge is pending per address; issuing a new one replaces
// any prior entry.
type Challenge struct {
	ID       string    // Unique identifier for the challenge
	Address  string    // Bitcoin address the challenge is bound to
	Nonce    string    // Random nonce embedded in the challenge text
	Text     string    // Exact text the wallet must sign
	IssuedAt time.Time // When the challenge was created
}

// Role is a capability level carried in issued tokens.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Identity is the subject extracted from a validated token.
type Identity struct {
	Subject  string // e.g. "btc:bc1q..."
	IssuedAt time.Time
	Roles    []Role
}

// HasRole reports whether the identity carries the given role.
func (id *Identity) HasRole(role Role) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}
