package auth

import (
	"context"

	"github.com/oddwes/ridesofjulian/internal/domain"
)

type contextKey string

const claimsKey contextKey = "ridesofjulian-auth-claims"

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// SessionFromContext returns the caller's session, empty when unauthenticated.
func SessionFromContext(ctx context.Context) domain.Session {
	claims, _ := FromContext(ctx)
	return claims.Session()
}
