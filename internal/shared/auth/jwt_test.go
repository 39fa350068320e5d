package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signTestToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestJWTVerifier(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		claims  jwt.MapClaims
		key     []byte
		wantUID string
		wantErr bool
	}{
		{
			name:    "valid",
			claims:  jwt.MapClaims{"sub": "u-1", "email": "u@example.com", "aud": "authenticated", "exp": future},
			key:     []byte(testSecret),
			wantUID: "u-1",
		},
		{
			name:    "wrong audience",
			claims:  jwt.MapClaims{"sub": "u-1", "aud": "anon", "exp": future},
			key:     []byte(testSecret),
			wantErr: true,
		},
		{
			name:    "expired",
			claims:  jwt.MapClaims{"sub": "u-1", "aud": "authenticated", "exp": time.Now().Add(-time.Minute).Unix()},
			key:     []byte(testSecret),
			wantErr: true,
		},
		{
			name:    "missing exp",
			claims:  jwt.MapClaims{"sub": "u-1", "aud": "authenticated"},
			key:     []byte(testSecret),
			wantErr: true,
		},
		{
			name:    "bad signature",
			claims:  jwt.MapClaims{"sub": "u-1", "aud": "authenticated", "exp": future},
			key:     []byte("another-secret"),
			wantErr: true,
		},
		{
			name:    "missing subject",
			claims:  jwt.MapClaims{"aud": "authenticated", "exp": future},
			key:     []byte(testSecret),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			token := signTestToken(t, jwt.SigningMethodHS256, tt.key, tt.claims)
			id, err := v.Verify(context.Background(), token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, id.UID)
			assert.Equal(t, "u@example.com", id.Email)
			assert.Equal(t, "supabase", id.Provider)
		})
	}
}

func TestJWTVerifierRejectsOtherAlgorithms(t *testing.T) {
	v, err := NewJWTVerifier(testSecret)
	require.NoError(t, err)
	token := signTestToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
		"sub": "u-1", "aud": "authenticated", "exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = v.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifierRequiresSecret(t *testing.T) {
	_, err := NewJWTVerifier(" ")
	require.Error(t, err)
}
