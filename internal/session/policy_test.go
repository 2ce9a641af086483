package session

import (
	"testing"
	"time"

	"careportal-platform/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

func claimsIssuedAt(t0 time.Time) auth.Claims {
	return auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(t0),
			ExpiresAt: jwt.NewNumericDate(t0.Add(15 * time.Minute)),
		},
		Role:     "provider",
		TenantID: "clinic-1",
	}
}

func TestPolicy_EvaluateBoundaries(t *testing.T) {
	p := Policy{Timeout: 15 * time.Minute, WarningWindow: 2 * time.Minute}
	t0 := time.Unix(1700000000, 0).UTC()
	claims := claimsIssuedAt(t0)

	cases := []struct {
		name      string
		age       time.Duration
		expired   bool
		remaining time.Duration
		warning   bool
	}{
		{"fresh", 0, false, 15 * time.Minute, false},
		{"mid-session", 10 * time.Minute, false, 5 * time.Minute, false},
		{"inside warning window", 13*time.Minute + 30*time.Second, false, 90 * time.Second, true},
		{"one tick before ceiling", 15*time.Minute - time.Second, false, time.Second, true},
		{"exactly at ceiling", 15 * time.Minute, true, 0, false},
		{"past ceiling", 16 * time.Minute, true, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := p.Evaluate(claims, t0.Add(tc.age))
			if st.Expired() != tc.expired {
				t.Fatalf("expired = %v, want %v", st.Expired(), tc.expired)
			}
			if !tc.expired {
				if st.Remaining != tc.remaining {
					t.Fatalf("remaining = %v, want %v", st.Remaining, tc.remaining)
				}
				if st.Warning != tc.warning {
					t.Fatalf("warning = %v, want %v", st.Warning, tc.warning)
				}
			}
		})
	}
}

func TestPolicy_MissingIssuedAtIsExpired(t *testing.T) {
	p := Policy{Timeout: 15 * time.Minute, WarningWindow: 2 * time.Minute}
	st := p.Evaluate(auth.Claims{}, time.Now())
	if !st.Expired() {
		t.Fatalf("expected fail-closed expiry for missing issued-at")
	}
}

func TestPolicy_RenewedClaimsGetFreshCeiling(t *testing.T) {
	p := Policy{Timeout: 15 * time.Minute, WarningWindow: 2 * time.Minute}
	t0 := time.Unix(1700000000, 0).UTC()

	old := claimsIssuedAt(t0)
	renewed := claimsIssuedAt(t0.Add(14 * time.Minute))

	now := t0.Add(16 * time.Minute)
	if !p.Evaluate(old, now).Expired() {
		t.Fatalf("original claims should be past their ceiling")
	}
	st := p.Evaluate(renewed, now)
	if st.Expired() {
		t.Fatalf("renewed claims should carry their own ceiling")
	}
	if st.Remaining != 13*time.Minute {
		t.Fatalf("remaining = %v, want 13m", st.Remaining)
	}
}
