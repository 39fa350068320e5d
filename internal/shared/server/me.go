package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/shared/auth"
	"hairalyzer-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

type meResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

func meHandler(c *gin.Context) {
	id, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	respond.JSON(c, http.StatusOK, meResponse{UserID: id.UID, Email: id.Email, Provider: id.Provider})
}
