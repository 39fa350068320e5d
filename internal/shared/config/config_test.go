package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("SUBMISSION_STORE", "")
	t.Setenv("OBJECT_STORE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.SubmissionStore)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, 120*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, []string{"supabase"}, cfg.AuthProviders)
	assert.Equal(t, 10, cfg.SubmitRatePerMinute)
	assert.Equal(t, 30, cfg.ChatRatePerMinute)
	assert.True(t, cfg.IsDevLike())
}

func TestLoadNormalizesLists(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://localhost/hair")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("AUTH_PROVIDERS", "Supabase, FIREBASE")
	t.Setenv("SUBMISSION_STORE", "MongoDB")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, []string{"supabase", "firebase"}, cfg.AuthProviders)
	assert.Equal(t, "mongo", cfg.SubmissionStore)
	assert.Equal(t, "s3", cfg.ObjectStoreType)
	assert.Equal(t, "https://api.example", cfg.PublicBaseURL)
	assert.False(t, cfg.IsDevLike())
}

func TestLoadRequiresDatabaseInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUBMISSION_STORE", "postgres")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}
