package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"careportal-platform/internal/auth"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeRefresher struct {
	mu     sync.Mutex
	claims auth.Claims
	err    error
	calls  int
}

func (r *fakeRefresher) Refresh(context.Context) (auth.Claims, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.claims, r.err
}

func (r *fakeRefresher) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached in time")
}

func newTestMonitor(clock *fakeClock, refresher Refresher, warnings *int, expirations *int) *Monitor {
	t0 := clock.Now()
	cfg := MonitorConfig{
		Policy:        Policy{Timeout: 15 * time.Minute, WarningWindow: 2 * time.Minute},
		RefreshWindow: 5 * time.Minute,
		Refresher:     refresher,
		Now:           clock.Now,
	}
	if warnings != nil {
		cfg.OnWarning = func(time.Duration) { *warnings++ }
	}
	if expirations != nil {
		cfg.OnExpired = func() { *expirations++ }
	}
	return NewMonitor(cfg, claimsIssuedAt(t0))
}

func TestMonitor_WarningFiresExactlyOnce(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	var warnings, expirations int
	m := newTestMonitor(clock, nil, &warnings, &expirations)

	clock.Advance(12 * time.Minute)
	m.Tick()
	if warnings != 0 {
		t.Fatalf("warning fired outside window")
	}

	// Dense ticks inside the warning window must not repeat-fire.
	clock.Advance(90 * time.Second)
	for i := 0; i < 10; i++ {
		m.Tick()
		clock.Advance(time.Second)
	}
	if warnings != 1 {
		t.Fatalf("warnings = %d, want 1", warnings)
	}
	if expirations != 0 {
		t.Fatalf("premature expiry")
	}
}

func TestMonitor_TimeoutFiresOnceThenInert(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	var warnings, expirations int
	m := newTestMonitor(clock, nil, &warnings, &expirations)

	clock.Advance(15 * time.Minute)
	for i := 0; i < 5; i++ {
		m.Tick()
	}
	if expirations != 1 {
		t.Fatalf("expirations = %d, want 1", expirations)
	}
	if !m.Expired() {
		t.Fatalf("monitor should report expired")
	}
	if m.Remaining() != 0 {
		t.Fatalf("remaining after expiry = %v, want 0", m.Remaining())
	}

	// Activity after expiry is a no-op.
	m.Activity(context.Background())
	if expirations != 1 {
		t.Fatalf("post-expiry activity changed state")
	}
}

func TestMonitor_ActivityOutsideRefreshWindowDoesNothing(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	ref := &fakeRefresher{}
	m := newTestMonitor(clock, ref, nil, nil)

	clock.Advance(5 * time.Minute) // 10m remaining, window is 5m
	m.Activity(context.Background())
	time.Sleep(5 * time.Millisecond)
	if ref.Calls() != 0 {
		t.Fatalf("refresh triggered with %v remaining", m.Remaining())
	}
}

func TestMonitor_ActivityTriggersRefreshAndRenews(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	t0 := clock.Now()
	ref := &fakeRefresher{claims: claimsIssuedAt(t0.Add(12 * time.Minute))}
	var warnings int
	m := newTestMonitor(clock, ref, &warnings, nil)

	clock.Advance(12 * time.Minute) // 3m remaining, inside refresh window
	m.Activity(context.Background())

	waitFor(t, func() bool { return m.Remaining() == 15*time.Minute })
	if ref.Calls() != 1 {
		t.Fatalf("refresh calls = %d, want 1", ref.Calls())
	}

	// Renewed session warns again at its own threshold.
	clock.Advance(13*time.Minute + 30*time.Second)
	m.Tick()
	if warnings != 1 {
		t.Fatalf("renewed session should re-arm the warning, got %d", warnings)
	}
}

func TestMonitor_RefreshFailureExpiresImmediately(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0).UTC()}
	ref := &fakeRefresher{err: errors.New("issuer unreachable")}
	expired := make(chan struct{}, 2)

	cfg := MonitorConfig{
		Policy:        Policy{Timeout: 15 * time.Minute, WarningWindow: 2 * time.Minute},
		RefreshWindow: 5 * time.Minute,
		Refresher:     ref,
		Now:           clock.Now,
		OnExpired:     func() { expired <- struct{}{} },
	}
	m := NewMonitor(cfg, claimsIssuedAt(clock.Now()))

	clock.Advance(12 * time.Minute)
	m.Activity(context.Background())

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout callback did not fire on refresh failure")
	}
	if !m.Expired() {
		t.Fatalf("monitor should be expired")
	}

	// Subsequent ticks stay inert; the callback never fires twice.
	m.Tick()
	select {
	case <-expired:
		t.Fatalf("timeout callback fired twice")
	default:
	}
}
