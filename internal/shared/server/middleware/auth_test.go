package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairalyzer-backend/internal/shared/auth"
)

func stubVerifier(calls *int) auth.Verifier {
	return auth.VerifierFunc(func(_ context.Context, token string) (auth.Identity, error) {
		*calls++
		if token == "good" {
			return auth.Identity{UID: "user-1", Email: "u@example.com", Provider: "supabase"}, nil
		}
		return auth.Identity{}, auth.ErrInvalidToken
	})
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int
	router := gin.New()
	router.Use(Auth(stubVerifier(&calls)))
	reached := false
	router.OPTIONS("/api/submit", func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/submit", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if calls != 0 {
		t.Fatalf("verifier should not run for preflight")
	}
	if reached {
		t.Fatalf("preflight should stop at the auth middleware")
	}
}

func TestAuthRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name      string
		header    string
		wantCalls int
	}{
		{name: "missing header", header: "", wantCalls: 0},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantCalls: 0},
		{name: "empty bearer", header: "Bearer   ", wantCalls: 0},
		{name: "rejected token", header: "Bearer bad", wantCalls: 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			var reached bool
			router := gin.New()
			router.Use(Auth(stubVerifier(&calls)))
			router.GET("/api/submissions", func(c *gin.Context) { reached = true })

			req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			// A client-supplied user id must never be trusted.
			req.Header.Set("X-User-Id", "attacker")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			require.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.False(t, reached)
			assert.Equal(t, tt.wantCalls, calls)

			var body map[string]map[string]any
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, "unauthorized", body["error"]["code"])
		})
	}
}

func TestAuthSetsIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var calls int
	router := gin.New()
	router.Use(Auth(stubVerifier(&calls)))
	router.GET("/api/submissions", func(c *gin.Context) {
		id, ok := auth.IdentityFromContext(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"userId": UserIDFromContext(c),
			"email":  UserEmailFromContext(c),
			"ctxUID": id.UID,
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.Header.Set("Authorization", "bearer good")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["userId"])
	assert.Equal(t, "u@example.com", body["email"])
	assert.Equal(t, "user-1", body["ctxUID"])
}
