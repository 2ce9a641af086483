package ownership

import (
	"context"
	"errors"
)

// ResourceType names a resource class that requires per-record ownership
// checks on top of role-level permission.
type ResourceType string

const (
	ResourceCheckIn        ResourceType = "check_in"
	ResourceCarePlan       ResourceType = "care_plan"
	ResourceBillingAccount ResourceType = "billing_account"
)

var (
	ErrNotFound     = errors.New("ownership: resource not found")
	ErrUnknownType  = errors.New("ownership: unknown resource type")
	ErrLookupFailed = errors.New("ownership: lookup failed")
)

// Store resolves a resource's owning identity. Lookups must reflect
// current storage state; results are never cached across requests.
type Store interface {
	// Owner returns the user id owning the given resource, or ErrNotFound.
	Owner(ctx context.Context, resource ResourceType, id string) (string, error)
}
