package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"hairalyzer-backend/internal/shared/telemetry"
)

const (
	supabaseProvider  = "supabase"
	introspectTimeout = 10 * time.Second
)

// SupabaseVerifier introspects access tokens against the Supabase Auth user endpoint.
type SupabaseVerifier struct {
	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
	Cache      TokenCache
	CacheTTL   time.Duration

	group singleflight.Group
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewSupabaseVerifier(baseURL, anonKey string, cache TokenCache, ttl time.Duration) *SupabaseVerifier {
	return &SupabaseVerifier{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AnonKey:    anonKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Cache:      cache,
		CacheTTL:   ttl,
	}
}

func (s *SupabaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	key := cacheKey(token)
	if s.Cache != nil {
		if id, ok := s.Cache.Get(ctx, key); ok {
			return id, nil
		}
	}

	// The shared lookup outlives any single caller so one disconnect does not
	// fail every request waiting on the same token.
	ch := s.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), introspectTimeout)
		defer cancel()
		id, err := s.introspect(lookupCtx, token)
		if err != nil {
			return Identity{}, err
		}
		if s.Cache != nil {
			s.Cache.Set(lookupCtx, key, id, s.CacheTTL)
		}
		return id, nil
	})
	select {
	case <-ctx.Done():
		return Identity{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Identity{}, res.Err
		}
		return res.Val.(Identity), nil
	}
}

func (s *SupabaseVerifier) introspect(ctx context.Context, token string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("build supabase request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", s.AnonKey)
	req.Header.Set("Accept", "application/json")

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrInvalidToken
	case resp.StatusCode >= 500:
		return Identity{}, fmt.Errorf("%w: supabase status %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return Identity{}, ErrInvalidToken
	}

	var user supabaseUser
	if err := json.Unmarshal(body, &user); err != nil {
		return Identity{}, fmt.Errorf("%w: decode supabase user: %v", ErrProviderUnavailable, err)
	}
	if user.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UID: user.ID, Email: user.Email, Provider: supabaseProvider}, nil
}

func logCacheError(op string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	telemetry.Warn("auth.cache_error", map[string]any{"op": op, "err": err})
}
