package ownership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore resolves owners from the business-entity tables. Each lookup is
// a single indexed point query; the mapping below is the only place that
// knows which table owns which resource type.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// ownerQueries maps resource type -> point query returning the owner id.
// Queries are parameterized; ids are never interpolated.
var ownerQueries = map[ResourceType]string{
	ResourceCheckIn:        `SELECT user_id FROM check_ins WHERE id = $1`,
	ResourceCarePlan:       `SELECT patient_id FROM care_plans WHERE id = $1`,
	ResourceBillingAccount: `SELECT user_id FROM billing_accounts WHERE id = $1`,
}

func (s *SQLStore) Owner(ctx context.Context, resource ResourceType, id string) (string, error) {
	q, ok := ownerQueries[resource]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, resource)
	}

	var owner string
	err := s.db.QueryRowContext(ctx, q, id).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return owner, nil
}
