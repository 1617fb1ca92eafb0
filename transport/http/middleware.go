package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/service"
	"github.com/gin-gonic/gin"
)

// identityKey is the gin context key the validated identity is stored under.
const identityKey = "identity"

// AuthMiddleware creates middleware that validates bearer tokens
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		identity, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			}
			return
		}

		c.Set(identityKey, identity)

		c.Next()
	}
}
