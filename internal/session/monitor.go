package session

import (
	"context"
	"sync"
	"time"

	"careportal-platform/internal/auth"
)

// Refresher obtains a fresh token for the current session holder. A
// successful refresh yields new claims with their own issued-at, and
// therefore a fresh ceiling; it never extends the old one.
type Refresher interface {
	Refresh(ctx context.Context) (auth.Claims, error)
}

// MonitorConfig wires one Monitor. OnWarning and OnExpired may be nil.
type MonitorConfig struct {
	Policy Policy

	// RefreshWindow is how close to expiry a registered activity triggers
	// a refresh attempt.
	RefreshWindow time.Duration

	Refresher Refresher

	// OnWarning is invoked exactly once per session when remaining time
	// first drops inside the warning window.
	OnWarning func(remaining time.Duration)

	// OnExpired is invoked exactly once; the host must force logout and
	// redirect. After it fires the monitor is inert until a new session.
	OnExpired func()

	// Now is injectable for deterministic tests; defaults to time.Now.
	Now func() time.Time
}

// Monitor tracks one active session on the holder's side, raising the
// warning and timeout signals ahead of server-side enforcement. It owns
// exactly one session's timer state and is not shared across sessions.
//
// State machine: Active -> Warning -> Expired, or Active -> (renewed) ->
// Active. All transitions are driven by Tick or by refresh completion.
type Monitor struct {
	mu     sync.Mutex
	cfg    MonitorConfig
	claims auth.Claims

	warned     bool
	expired    bool
	refreshing bool
}

func NewMonitor(cfg MonitorConfig, claims auth.Claims) *Monitor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Monitor{cfg: cfg, claims: claims}
}

// Tick evaluates the session once. Hosts drive it from a ticker via Run;
// tests call it directly with an injected clock.
func (m *Monitor) Tick() {
	m.mu.Lock()
	if m.expired {
		m.mu.Unlock()
		return
	}

	status := m.cfg.Policy.Evaluate(m.claims, m.cfg.Now())

	if status.Expired() {
		cb := m.markExpiredLocked()
		m.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	var warn func(time.Duration)
	if status.Warning && !m.warned {
		m.warned = true
		warn = m.cfg.OnWarning
	}
	m.mu.Unlock()

	if warn != nil {
		warn(status.Remaining)
	}
}

// Activity registers user interaction. When the session is close to its
// ceiling, it launches an asynchronous refresh; an ambiguous or failed
// refresh expires the session immediately rather than leaving it silently
// alive past the ceiling.
func (m *Monitor) Activity(ctx context.Context) {
	m.mu.Lock()
	if m.expired || m.refreshing || m.cfg.Refresher == nil {
		m.mu.Unlock()
		return
	}
	status := m.cfg.Policy.Evaluate(m.claims, m.cfg.Now())
	if status.Expired() || status.Remaining >= m.cfg.RefreshWindow {
		m.mu.Unlock()
		return
	}
	m.refreshing = true
	m.mu.Unlock()

	go m.refresh(ctx)
}

func (m *Monitor) refresh(ctx context.Context) {
	claims, err := m.cfg.Refresher.Refresh(ctx)

	m.mu.Lock()
	m.refreshing = false
	if m.expired {
		m.mu.Unlock()
		return
	}
	if err != nil {
		cb := m.markExpiredLocked()
		m.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}
	m.claims = claims
	m.warned = false
	m.mu.Unlock()
}

// Remaining exposes the countdown for the holder's UI. Returns zero once
// expired.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expired {
		return 0
	}
	status := m.cfg.Policy.Evaluate(m.claims, m.cfg.Now())
	if status.Expired() {
		return 0
	}
	return status.Remaining
}

// Expired reports whether the timeout signal has fired.
func (m *Monitor) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expired
}

// Run drives the monitor from a wall-clock ticker until the session
// expires or ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Tick()
			if m.Expired() {
				return
			}
		}
	}
}

// markExpiredLocked flips the terminal state and returns the callback to
// invoke after the lock is released. Idempotent.
func (m *Monitor) markExpiredLocked() func() {
	if m.expired {
		return nil
	}
	m.expired = true
	return m.cfg.OnExpired
}
