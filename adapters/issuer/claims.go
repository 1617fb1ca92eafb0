package issuer

import (
	"github.com/blockboard/povauth/core"
	"github.com/golang-jwt/jwt/v5"
)

// Claims combines standard claims with the role list carried by every
// issued token.
type Claims struct {
	jwt.RegisteredClaims
	Roles []core.Role `json:"roles"`
}
