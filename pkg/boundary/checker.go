package boundary

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// Checker verifies ownership of heterogeneous resources ahead of a compound
// write, e.g. confirming a student and a semester both belong to the tenant
// before inserting the enrollment that joins them.
//
// A Checker holds exactly one tenant context for its lifetime. Construct one
// per logical operation; never reuse it across requests from different
// tenants.
type Checker struct {
	tc    tenant.Context
	store store.IsolationStore
}

// New builds a Checker bound to a tenant context.
func New(tc tenant.Context, st store.IsolationStore) (*Checker, error) {
	if !tc.Valid() {
		return nil, store.ErrAuthenticationRequired
	}
	return &Checker{tc: tc, store: st}, nil
}

// Tenant returns the bound tenant identifier.
func (c *Checker) Tenant() string {
	return c.tc.TenantID
}

// GetByID fetches a record within the tenant's scope. A denial (missing or
// foreign-owned) is reported as ErrAccessDenied so callers can map the whole
// compound operation to a 403 without string matching.
func (c *Checker) GetByID(ctx context.Context, kind registry.Kind, id any) (store.Record, error) {
	record, err := c.store.GetByID(ctx, c.tc, kind, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFoundOrForbidden) {
			return nil, fmt.Errorf("%s %v: %w", kind, id, store.ErrAccessDenied)
		}
		return nil, err
	}
	return record, nil
}

// Insert persists a record with tenant stamping, delegating to the
// isolation store.
func (c *Checker) Insert(ctx context.Context, kind registry.Kind, payload store.Record) (store.Record, error) {
	return c.store.Insert(ctx, c.tc, kind, payload)
}
