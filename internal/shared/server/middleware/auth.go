package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/shared/auth"
	"hairalyzer-backend/internal/shared/server/respond"
	"hairalyzer-backend/internal/shared/telemetry"
)

const (
	userIDKey       = "userId"
	userEmailKey    = "userEmail"
	authProviderKey = "authProvider"
)

// Auth resolves the bearer token with v and stores the identity in the gin and
// request contexts. Requests without a verifiable token are rejected with 401.
func Auth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrProviderUnavailable) {
				telemetry.Warn("auth.provider_unavailable", map[string]any{
					"request_id": RequestIDFromContext(c),
					"err":        err,
				})
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, id.UID)
		if id.Email != "" {
			c.Set(userEmailKey, id.Email)
		}
		c.Set(authProviderKey, id.Provider)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}
