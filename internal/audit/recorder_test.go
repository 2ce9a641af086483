package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func TestRecorder_StampsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo, slog.Default(), nil)

	rec.Record(context.Background(), Event{
		TenantID:  "clinic-1",
		Action:    ActionPHIAccess,
		ActorID:   "user-1",
		ActorRole: "provider",
		Outcome:   OutcomeAllowed,
	})

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	if evs[0].ID == "" {
		t.Fatalf("expected generated id")
	}
	if evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected stamped timestamp")
	}
}

func TestRecorder_SinkFaultReportedNotSwallowed(t *testing.T) {
	sinkErr := errors.New("sink unreachable")
	repo := NewMemoryRepo()
	repo.FailWith = sinkErr

	var faults []error
	rec := NewRecorder(repo, slog.Default(), func(err error) { faults = append(faults, err) })

	// Must not panic or propagate; the request outcome is unaffected.
	rec.Record(context.Background(), Event{
		Action:  ActionSessionTimeout,
		Outcome: OutcomeDenied,
	})

	if len(faults) != 1 || !errors.Is(faults[0], sinkErr) {
		t.Fatalf("expected sink fault on operational channel, got %v", faults)
	}
}

func TestRecorder_InvalidEventIsAFault(t *testing.T) {
	repo := NewMemoryRepo()
	var faults []error
	rec := NewRecorder(repo, slog.Default(), func(err error) { faults = append(faults, err) })

	rec.Record(context.Background(), Event{ActorID: "user-1"})

	if len(repo.Events()) != 0 {
		t.Fatalf("invalid event must not be appended")
	}
	if len(faults) != 1 || !errors.Is(faults[0], ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent fault, got %v", faults)
	}
}

func TestRecorder_WritesDespiteCancelledRequest(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo, slog.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec.Record(ctx, Event{
		Action:  ActionUnauthorizedAccess,
		Outcome: OutcomeDenied,
	})

	if len(repo.Events()) != 1 {
		t.Fatalf("audit write must survive request cancellation")
	}
}

func TestRecorder_FIFOWithinOneCaller(t *testing.T) {
	repo := NewMemoryRepo()
	rec := NewRecorder(repo, slog.Default(), nil)
	rec.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }

	actions := []Action{ActionLoginSuccess, ActionPHIAccess, ActionLogout}
	for _, a := range actions {
		rec.Record(context.Background(), Event{Action: a, Outcome: OutcomeAllowed})
	}

	evs := repo.Events()
	if len(evs) != len(actions) {
		t.Fatalf("expected %d events, got %d", len(actions), len(evs))
	}
	for i, a := range actions {
		if evs[i].Action != a {
			t.Fatalf("event %d = %q, want %q", i, evs[i].Action, a)
		}
	}
}
