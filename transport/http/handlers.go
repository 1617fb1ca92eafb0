package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blockboard/povauth/core"
	"github.com/blockboard/povauth/service"
	"github.com/gin-gonic/gin"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), strings.TrimSpace(req.Address))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"challenge": challenge})
}

// Verify handles the signature verification request
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	token, err := h.authService.VerifyAndIssue(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	value, exists := c.Get(identityKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identity not found in context"})
		return
	}
	identity := value.(*core.Identity)

	role := core.RoleUser
	if identity.HasRole(core.RoleAdmin) {
		role = core.RoleAdmin
	} else if identity.HasRole(core.RoleModerator) {
		role = core.RoleModerator
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       identity.Subject,
		"username": strings.TrimPrefix(identity.Subject, service.SubjectPrefix),
		"role":     role,
	})
}

// Health is a lightweight liveness handler.
func (h *AuthHandlers) Health(c *gin.Context) {
	c.Status(http.StatusOK)
}

// writeError maps domain errors to status codes. Bodies stay generic:
// verification detail never crosses the wire.
func (h *AuthHandlers) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAddress),
		errors.Is(err, core.ErrNoChallenge),
		errors.Is(err, core.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	case errors.Is(err, core.ErrChallengeExpired):
		c.JSON(http.StatusGone, gin.H{"error": "challenge expired"})
	case errors.Is(err, core.ErrInsufficientFunds):
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient funds"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
