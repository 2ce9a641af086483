package audit

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests
// and local development. It is not intended for production use.
type MemoryRepo struct {
	mu     sync.Mutex
	events []Event

	// FailWith, when set, makes Append return that error. Tests use it to
	// exercise the operational fault channel.
	FailWith error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.events = append(r.events, e)
	return nil
}

func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// LastEvent returns the most recent event, for test assertions.
func (r *MemoryRepo) LastEvent() (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, errors.New("no events recorded")
	}
	return r.events[len(r.events)-1], nil
}
