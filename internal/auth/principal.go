package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when the required principal has not authorized the call.
var ErrUnauthorized = errors.New("unauthorized")

// Principal identifies an account able to authorize calls, e.g. a Stellar address.
type Principal string

type principalsKey struct{}

// WithPrincipal returns a context in which p has authorized the current call.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	existing, _ := ctx.Value(principalsKey{}).([]Principal)
	next := make([]Principal, 0, len(existing)+1)
	next = append(next, existing...)
	next = append(next, p)
	return context.WithValue(ctx, principalsKey{}, next)
}

// PrincipalFromContext returns the most recently authenticated principal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	ps, _ := ctx.Value(principalsKey{}).([]Principal)
	if len(ps) == 0 {
		return "", false
	}
	return ps[len(ps)-1], true
}

// Authorizer verifies that a principal authorized the current call.
type Authorizer interface {
	Require(ctx context.Context, p Principal) error
}

// ContextAuthorizer accepts principals previously attached with WithPrincipal.
type ContextAuthorizer struct{}

// Require succeeds only if p is among the context's authenticated principals.
func (ContextAuthorizer) Require(ctx context.Context, p Principal) error {
	if p == "" {
		return ErrUnauthorized
	}
	ps, _ := ctx.Value(principalsKey{}).([]Principal)
	for _, candidate := range ps {
		if candidate == p {
			return nil
		}
	}
	return ErrUnauthorized
}

// AllowAll authorizes every principal. Only for tests and local development.
type AllowAll struct{}

// Require always succeeds.
func (AllowAll) Require(context.Context, Principal) error { return nil }
