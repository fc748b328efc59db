package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/internal/auth"
	"github.com/halcyonweb/mediakit/pkg/types"
)

// AuthRoutes wires staff login
func AuthRoutes(api *gin.RouterGroup, authService *auth.Service) {
	api.POST("/auth/login", handleLogin(authService))
}

func handleLogin(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "email and password are required"})
			return
		}

		token, err := authService.Login(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid credentials"})
				return
			}
			log.Error().Err(err).Msg("login failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed"})
			return
		}

		c.JSON(http.StatusOK, token)
	}
}
