package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MockVerifier trusts a fixed set of bypass tokens. It exists for local
// development and tests only; config validation refuses to start a
// production process with it enabled, and it shares no trust-decision code
// with JWKSVerifier. Selection between the two happens once, in main.
type MockVerifier struct {
	identities map[string]Claims
	// sessionTTL stamps issued-at/expiry on seeded claims that omit them,
	// so a freshly presented bypass token behaves like a fresh login.
	sessionTTL time.Duration
}

func NewMockVerifier(identities map[string]Claims, sessionTTL time.Duration) *MockVerifier {
	cp := make(map[string]Claims, len(identities))
	for k, v := range identities {
		cp[k] = v
	}
	return &MockVerifier{identities: cp, sessionTTL: sessionTTL}
}

func (m *MockVerifier) Verify(_ context.Context, token string, now time.Time) (Claims, error) {
	c, ok := m.identities[token]
	if !ok {
		return Claims{}, fmt.Errorf("%w: unknown bypass token", ErrInvalidToken)
	}
	if c.IssuedAt == nil {
		c.IssuedAt = jwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = jwt.NewNumericDate(c.IssuedAt.Time.Add(m.sessionTTL))
	}
	if !now.Before(c.ExpiresAt.Time) {
		return Claims{}, fmt.Errorf("%w: bypass token past expiry", ErrExpiredToken)
	}
	if err := requireIdentityClaims(c); err != nil {
		return Claims{}, err
	}
	return c, nil
}

// DemoIdentities are the bypass identities wired when AUTH_MOCK is set.
// Token strings are intentionally self-describing; none of this is
// reachable in production.
func DemoIdentities() map[string]Claims {
	mk := func(sub, email, role string) Claims {
		return Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
			Email:            email,
			Role:             role,
			TenantID:         "demo-clinic",
		}
	}
	return map[string]Claims{
		"demo-patient":   mk("demo-patient-1", "patient@demo.local", "patient"),
		"demo-provider":  mk("demo-provider-1", "provider@demo.local", "provider"),
		"demo-supporter": mk("demo-supporter-1", "supporter@demo.local", "supporter"),
		"demo-admin":     mk("demo-admin-1", "admin@demo.local", "admin"),
	}
}
