package audit

import "time"

// Event is an immutable, append-only compliance audit record.
//
// Invariants:
//   - Events are never updated or deleted by the application.
//   - Retention is compliance-grade, far longer than operational logs;
//     that is a deployment concern (insert-only table, time partitions).
//   - Every authentication event, authorization denial and PHI access
//     produces exactly one event.
type Event struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	// Action is the business category of the record, from the closed set
	// below. Compliance tooling groups and filters on it.
	Action Action `json:"action" db:"action"`

	// ActorID is the authenticated subject causing the event. May be
	// empty for rejected tokens where no identity was established.
	ActorID string `json:"actor_id,omitempty" db:"actor_id"`
	// ActorRole is the role actually held at decision time.
	ActorRole string `json:"actor_role,omitempty" db:"actor_role"`

	ResourceType string `json:"resource_type,omitempty" db:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty" db:"resource_id"`

	Outcome Outcome `json:"outcome" db:"outcome"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`
	// UserAgent is the client descriptor as presented.
	UserAgent string `json:"user_agent,omitempty" db:"user_agent"`

	// Metadata is structured context (required permission, denial reason)
	// kept machine-parseable for compliance queries.
	Metadata map[string]string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Action is the closed vocabulary of auditable actions.
type Action string

const (
	ActionLoginSuccess       Action = "LOGIN_SUCCESS"
	ActionLogout             Action = "LOGOUT"
	ActionSessionTimeout     Action = "SESSION_TIMEOUT"
	ActionUnauthorizedAccess Action = "UNAUTHORIZED_ACCESS_ATTEMPT"
	ActionPHIAccess          Action = "PHI_ACCESS"
	ActionTokenRejected      Action = "TOKEN_REJECTED"
)

type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)
