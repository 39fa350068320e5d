package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFirstSuccessWins(t *testing.T) {
	var secondCalled bool
	chain := Chain{
		VerifierFunc(func(context.Context, string) (Identity, error) {
			return Identity{}, ErrInvalidToken
		}),
		VerifierFunc(func(context.Context, string) (Identity, error) {
			secondCalled = true
			return Identity{UID: "fb-1", Provider: "firebase"}, nil
		}),
		VerifierFunc(func(context.Context, string) (Identity, error) {
			t.Fatal("third verifier should not run")
			return Identity{}, nil
		}),
	}

	id, err := chain.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, secondCalled)
	assert.Equal(t, "fb-1", id.UID)
}

func TestChainAllFail(t *testing.T) {
	chain := Chain{
		VerifierFunc(func(context.Context, string) (Identity, error) { return Identity{}, ErrInvalidToken }),
		VerifierFunc(func(context.Context, string) (Identity, error) { return Identity{}, ErrProviderUnavailable }),
	}
	_, err := chain.Verify(context.Background(), "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = Chain{}.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNoVerifiers)
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UID: "u-9"})
	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-9", id.UID)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestMemoryCacheExpires(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(context.Background(), "k", Identity{UID: "u"}, time.Minute)
	_, ok := c.Get(context.Background(), "k")
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get(context.Background(), "k")
	assert.False(t, ok)

	c.Set(context.Background(), "zero", Identity{UID: "u"}, 0)
	_, ok = c.Get(context.Background(), "zero")
	assert.False(t, ok)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCache(client)
	ctx := context.Background()

	key := cacheKey("raw-token")
	c.Set(ctx, key, Identity{UID: "u-1", Email: "e@x.io", Provider: "supabase"}, time.Minute)

	assert.True(t, mr.Exists("hairalyzer:auth:"+key))
	assert.False(t, mr.Exists("hairalyzer:auth:raw-token"))

	id, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "e@x.io", id.Email)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}

type fakeIDTokens struct {
	tok *fbauth.Token
	err error
}

func (f fakeIDTokens) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return f.tok, f.err
}

func TestFirebaseVerifier(t *testing.T) {
	v := &FirebaseVerifier{client: fakeIDTokens{tok: &fbauth.Token{
		UID:    "legacy-1",
		Claims: map[string]interface{}{"email": "old@example.com"},
	}}}
	id, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, Identity{UID: "legacy-1", Email: "old@example.com", Provider: "firebase"}, id)

	v = &FirebaseVerifier{client: fakeIDTokens{err: errors.New("ID token has expired")}}
	_, err = v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
