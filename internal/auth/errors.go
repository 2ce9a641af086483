package auth

import "errors"

// Verifier error taxonomy. Callers branch on these to decide whether a
// silent refresh is worth attempting (expired) or not (invalid), and to
// tell identity failures apart from infrastructure failures.
var (
	// ErrInvalidToken covers malformed or unparseable input, and tokens
	// missing required claims. A missing Authorization header is reported
	// the same way.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrExpiredToken covers syntactically valid tokens past their expiry.
	ErrExpiredToken = errors.New("auth: token expired")

	// ErrVerification covers signature/issuer mismatch and transport
	// failures while fetching verification key material.
	ErrVerification = errors.New("auth: verification failed")
)
