package ports

import "github.com/blockboard/povauth/core"

// Issuer mints and validates bearer tokens for authenticated subjects.
type Issuer interface {
	// Issue creates a token for the subject carrying the given roles.
	Issue(subject string, roles []core.Role) (string, error)

	// Validate parses a token and returns the identity it certifies.
	Validate(token string) (*core.Identity, error)
}
