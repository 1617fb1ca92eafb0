package issuer

import (
	"strings"
	"testing"
	"time"

	"github.com/blockboard/povauth/core"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("testsecret-abcdefghijklmnopqrstuvwxyz012345")

func TestJWTIssuer_IssueAndValidate(t *testing.T) {
	iss := NewJWTIssuer(testSecret)

	token, err := iss.Issue("btc:bc1qs39xhnvs4fapud7hteh6anyr8dl09e5e8km875", []core.Role{core.RoleUser})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "ey"))

	identity, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "btc:bc1qs39xhnvs4fapud7hteh6anyr8dl09e5e8km875", identity.Subject)
	assert.True(t, identity.HasRole(core.RoleUser))
	assert.False(t, identity.HasRole(core.RoleAdmin))
}

func TestJWTIssuer_TokenCarriesFixedExpiry(t *testing.T) {
	iss := NewJWTIssuer(testSecret)

	token, err := iss.Issue("btc:addr", []core.Role{core.RoleUser})
	require.NoError(t, err)

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, TokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.NotEmpty(t, claims.ID)
}

func TestJWTIssuer_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTIssuer(testSecret).Issue("btc:addr", []core.Role{core.RoleUser})
	require.NoError(t, err)

	_, err = NewJWTIssuer([]byte("another secret entirely")).Validate(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestJWTIssuer_RejectsTamperedToken(t *testing.T) {
	iss := NewJWTIssuer(testSecret)

	token, err := iss.Issue("btc:addr", []core.Role{core.RoleUser})
	require.NoError(t, err)

	_, err = iss.Validate(token + "x")
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = iss.Validate("not-a-jwt")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestJWTIssuer_RejectsExpiredToken(t *testing.T) {
	iss := &JWTIssuer{secret: testSecret, ttl: -time.Minute}

	token, err := iss.Issue("btc:addr", []core.Role{core.RoleUser})
	require.NoError(t, err)

	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTIssuer_RejectsUnexpectedSigningMethod(t *testing.T) {
	// alg=none tokens must never validate.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "btc:addr"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTIssuer(testSecret).Validate(token)
	assert.Error(t, err)
}
