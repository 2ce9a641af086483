package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresRepo persists audit events in an insert-only table.
//
// Storage posture:
//   - Table audit_events with an INSERT-only policy (no UPDATE/DELETE
//     grants for the application role; optionally a trigger to enforce it).
//   - Partition by created_at for compliance-grade retention.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const insertEventSQL = `
INSERT INTO audit_events
	(id, tenant_id, action, actor_id, actor_role,
	 resource_type, resource_id, outcome, ip_address, user_agent, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("audit: metadata marshal: %w", err)
	}
	_, err = r.db.ExecContext(ctx, insertEventSQL,
		e.ID,
		e.TenantID,
		string(e.Action),
		nullable(e.ActorID),
		nullable(e.ActorRole),
		nullable(e.ResourceType),
		nullable(e.ResourceID),
		string(e.Outcome),
		nullable(e.IPAddress),
		nullable(e.UserAgent),
		meta,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
