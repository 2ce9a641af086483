package auth

import (
	"context"
	"errors"
)

type ctxKey struct{}

// WithIdentity attaches verified claims to the request context. Only the
// access guard should call this, after the full decision chain has passed.
func WithIdentity(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

// Identity returns the verified claims attached to the context.
func Identity(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claims)
	return c, ok
}

func UserID(ctx context.Context) (string, error) {
	if c, ok := Identity(ctx); ok && c.Subject != "" {
		return c.Subject, nil
	}
	return "", errors.New("user identity not in context")
}

func Role(ctx context.Context) (string, error) {
	if c, ok := Identity(ctx); ok && c.Role != "" {
		return c.Role, nil
	}
	return "", errors.New("role not in context")
}

func TenantID(ctx context.Context) (string, error) {
	if c, ok := Identity(ctx); ok && c.TenantID != "" {
		return c.TenantID, nil
	}
	return "", errors.New("tenant_id not in context")
}
