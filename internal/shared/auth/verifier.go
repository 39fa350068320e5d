// Package auth resolves bearer tokens to user identities issued by the external
// identity providers (Supabase, and legacy Firebase accounts).
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidToken reports a token the provider rejected or could not parse.
	ErrInvalidToken = errors.New("invalid token")
	// ErrProviderUnavailable reports a provider that could not be reached.
	ErrProviderUnavailable = errors.New("auth provider unavailable")
	// ErrNoVerifiers is returned by an empty Chain.
	ErrNoVerifiers = errors.New("no auth verifiers configured")
)

// Identity is the opaque user reference attached to authenticated requests.
type Identity struct {
	UID      string `json:"uid"`
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider"`
}

// Verifier resolves a raw bearer token to an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// Chain tries each verifier in order; the first success wins.
type Chain []Verifier

func (c Chain) Verify(ctx context.Context, token string) (Identity, error) {
	if len(c) == 0 {
		return Identity{}, ErrNoVerifiers
	}
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrInvalidToken
	}
	var errs []error
	for _, v := range c {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return Identity{}, fmt.Errorf("verify token: %w", errors.Join(errs...))
}

type identityKey struct{}

// WithIdentity stores id on ctx for code below the HTTP layer.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UID != ""
}
