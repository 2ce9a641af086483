package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careportal-platform/internal/config"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates a bearer token and extracts identity claims.
//
// Implementations are selected exactly once at construction (production
// JWKS verifier or the dev-only mock); business logic never branches on
// which one is in use.
type TokenVerifier interface {
	Verify(ctx context.Context, token string, now time.Time) (Claims, error)
}

// fetchTimeout bounds any network round-trip for key material. Exceeding it
// is a verification failure, never an indefinite hang.
const fetchTimeout = 5 * time.Second

// clockSkewLeeway tolerates small clock drift between issuer and verifier.
const clockSkewLeeway = 30 * time.Second

// JWKSVerifier validates tokens against the identity provider's published
// key set. Key material is cached and refreshed on a bounded schedule by
// the keyfunc layer; verification itself is a pure function of token,
// current time and trusted keys.
type JWKSVerifier struct {
	keys     keyfunc.Keyfunc
	issuer   string
	audience string
}

func NewJWKSVerifier(ctx context.Context, cfg config.AuthConfig) (*JWKSVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("auth: jwks url is required")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("auth: issuer is required")
	}
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
	if err != nil {
		return nil, fmt.Errorf("auth: jwks init: %w", err)
	}
	return &JWKSVerifier{keys: kf, issuer: cfg.Issuer, audience: cfg.Audience}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, token string, now time.Time) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Alg(),
			jwt.SigningMethodES256.Alg(),
		}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuer),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var claims Claims
	parser := jwt.NewParser(opts...)
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if err := fetchCtx.Err(); err != nil {
			return nil, err
		}
		return v.keys.Keyfunc(t)
	})
	if err != nil {
		return Claims{}, classifyParseError(err)
	}

	if err := requireIdentityClaims(claims); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// classifyParseError maps golang-jwt errors onto the verifier taxonomy.
// Expiry is reported distinctly so callers can attempt a silent refresh.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	default:
		// Signature mismatch, wrong issuer/audience, or a failed key fetch.
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
}

func requireIdentityClaims(c Claims) error {
	if c.Subject == "" {
		return fmt.Errorf("%w: sub missing", ErrInvalidToken)
	}
	if c.Role == "" {
		return fmt.Errorf("%w: role missing", ErrInvalidToken)
	}
	if c.TenantID == "" {
		return fmt.Errorf("%w: tenant_id missing", ErrInvalidToken)
	}
	return nil
}
