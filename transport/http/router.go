package http

import (
	"github.com/blockboard/povauth/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	// Create handlers
	handlers := NewAuthHandlers(authService)

	router.GET("/healthz", handlers.Health)

	// Auth routes
	auth := router.Group("/auth/bitcoin")
	{
		auth.POST("/challenge", handlers.Challenge)
		auth.POST("/verify", handlers.Verify)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
