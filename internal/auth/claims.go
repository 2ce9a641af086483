package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the only supported identity claims shape for this service.
// They are extracted from a verified token and immutable afterwards; a role
// change requires re-authentication (a new token), never claim mutation.
//
// Tenancy invariant: TenantID must be present for all identities.
type Claims struct {
	jwt.RegisteredClaims

	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenant_id"`
}

// UserID returns the subject identifier.
func (c Claims) UserID() string { return c.Subject }

// Issued returns the token's issued-at time, or the zero time when absent.
// The session ceiling is computed from this value.
func (c Claims) Issued() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// Expires returns the token's expiry time, or the zero time when absent.
func (c Claims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
