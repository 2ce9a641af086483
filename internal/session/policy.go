package session

import (
	"time"

	"careportal-platform/internal/auth"
	"careportal-platform/internal/config"
)

// Policy enforces the PHI session ceiling: an absolute, non-renewable
// maximum session age measured from the token's issued-at time. Activity
// never extends it; a refreshed token carries its own issued-at and
// therefore its own fresh ceiling.
//
// Evaluate is a pure function of claims and wall-clock time, so it is
// testable without any session store and safe under concurrent use.
type Policy struct {
	Timeout       time.Duration
	WarningWindow time.Duration
}

func NewPolicy(cfg config.SessionConfig) Policy {
	return Policy{Timeout: cfg.Timeout, WarningWindow: cfg.WarningWindow}
}

type State int

const (
	StateValid State = iota
	StateExpired
)

// Status is the result of evaluating a session against the policy.
type Status struct {
	State     State
	Remaining time.Duration
	// Warning signals the holder should be warned or silently refresh.
	// It is advice, not a failure.
	Warning bool
}

func (s Status) Expired() bool { return s.State == StateExpired }

// Evaluate computes session age from the claims' issued-at timestamp.
// A missing issued-at and the exact boundary age == Timeout are both
// expired (fail-closed).
func (p Policy) Evaluate(claims auth.Claims, now time.Time) Status {
	issued := claims.Issued()
	if issued.IsZero() {
		return Status{State: StateExpired}
	}
	age := now.Sub(issued)
	if age >= p.Timeout {
		return Status{State: StateExpired}
	}
	remaining := p.Timeout - age
	return Status{
		State:     StateValid,
		Remaining: remaining,
		Warning:   remaining < p.WarningWindow,
	}
}
