package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionEvent is broadcast to every holder of an authenticated session so
// other tabs/devices of the same subject can force logout in step with the
// server-side decision.
type SessionEvent struct {
	Kind     Kind      `json:"kind"`
	UserID   string    `json:"user_id"`
	TenantID string    `json:"tenant_id"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

type Kind string

const (
	KindSessionEnded   Kind = "session_ended"
	KindSessionExpired Kind = "session_expired"
)

// Broadcaster is the "broadcast to authenticated sessions" contract. The
// real-time transport behind it (websocket fan-out etc.) is an external
// collaborator; this module only guarantees publication.
type Broadcaster interface {
	Broadcast(ctx context.Context, e SessionEvent) error
}

// sessionChannel is the pub/sub channel session holders subscribe to.
const sessionChannel = "careportal:sessions"

// RedisBroadcaster publishes session events on a Redis channel.
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, e SessionEvent) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	if err := b.rdb.Publish(ctx, sessionChannel, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// MemoryBroadcaster records events for tests.
type MemoryBroadcaster struct {
	Events []SessionEvent
}

func (b *MemoryBroadcaster) Broadcast(_ context.Context, e SessionEvent) error {
	b.Events = append(b.Events, e)
	return nil
}
