package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// writeTimeout bounds a single sink write. A slow or unreachable sink is
// an operational fault, not a hang.
const writeTimeout = 3 * time.Second

var ErrInvalidEvent = errors.New("audit: invalid event")

// Recorder writes compliance audit records.
//
// Record is infallible from the caller's perspective: a sink failure never
// aborts the request that triggered it, but it is never silent either —
// faults go to the operational channel (structured log + the injected
// fault hook, wired to a metrics counter in main).
//
// Ordering: calls from one request are FIFO because Record is synchronous;
// cross-request ordering is timestamp-based best effort.
type Recorder struct {
	repo    Repository
	clock   func() time.Time
	log     *slog.Logger
	onFault func(error)
}

func NewRecorder(repo Repository, log *slog.Logger, onFault func(error)) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{repo: repo, clock: time.Now, log: log, onFault: onFault}
}

// Record appends one event. The write is attempted even when the inbound
// request context was already cancelled: the decision was reached, so the
// record for it must not be dropped.
func (r *Recorder) Record(ctx context.Context, e Event) {
	if err := r.append(ctx, e); err != nil {
		r.log.Error("audit sink fault", "err", err, "action", string(e.Action), "actor_id", e.ActorID)
		if r.onFault != nil {
			r.onFault(err)
		}
	}
}

func (r *Recorder) append(ctx context.Context, e Event) error {
	if r.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Action == "" || e.Outcome == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.clock().UTC()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	return r.repo.Append(writeCtx, e)
}
