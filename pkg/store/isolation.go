package store

import (
	"context"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// Record is a single row of a tenant-scoped table, keyed by column name.
type Record map[string]any

// ListOptions narrows and pages a scoped list. Filters and OrderBy are
// validated against the resource descriptor's allowlists; values are always
// bound as parameters.
type ListOptions struct {
	// Filters are ANDed equality conditions, applied after the ownership
	// predicate. Keys must be in the descriptor's filter allowlist.
	Filters map[string]any

	// OrderBy must be in the descriptor's sort allowlist. Defaults to the
	// id column.
	OrderBy string

	// Desc orders descending when set.
	Desc bool

	// Limit is clamped to the server-configured maximum. Zero or negative
	// means the configured default.
	Limit int

	// Offset into the scoped result set.
	Offset int
}

// ListResult carries a page of records plus the total matching the same
// scoped predicate without pagination.
type ListResult struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
	Count   int      `json:"count"`
}

// BulkResult reports an all-or-nothing bulk insert. Records preserves the
// order the rows were supplied in.
type BulkResult struct {
	InsertedCount int      `json:"inserted_count"`
	Records       []Record `json:"records"`
}

// IsolationStore is the set of primitive tenant-scoped operations. Every
// method takes the request context (for cancellation) and the tenant context
// as explicit arguments; every generated statement carries the ownership
// predicate for that tenant.
type IsolationStore interface {
	// List returns records owned by the tenant, optionally filtered and
	// paged. Unknown filter or sort columns fail with a ValidationError.
	List(ctx context.Context, tc tenant.Context, kind registry.Kind, opts ListOptions) (ListResult, error)

	// GetByID fetches one record by id within the tenant's scope. A row
	// owned by another tenant and a missing row both return
	// ErrNotFoundOrForbidden.
	GetByID(ctx context.Context, tc tenant.Context, kind registry.Kind, id any) (Record, error)

	// Insert persists a record with the owner column unconditionally set to
	// the tenant, overwriting any caller-supplied owner value. This is the
	// only place caller input affecting ownership is overridden rather than
	// rejected.
	Insert(ctx context.Context, tc tenant.Context, kind registry.Kind, payload Record) (Record, error)

	// Update applies a patch to a record the tenant owns. Zero rows matched
	// returns ErrNotFoundOrForbidden. The owner column cannot be patched.
	Update(ctx context.Context, tc tenant.Context, kind registry.Kind, id any, patch Record) (Record, error)

	// Delete removes a record the tenant owns, returning the deleted row.
	// Zero rows matched returns ErrNotFoundOrForbidden.
	Delete(ctx context.Context, tc tenant.Context, kind registry.Kind, id any) (Record, error)

	// QueryWithTenant executes a raw parameterized SELECT after binding the
	// ownership predicate to the statement's registered target table. If the
	// target cannot be resolved unambiguously, or a second registered table
	// appears anywhere in the statement (join or subquery), the call fails
	// with ErrUnscopableQuery and nothing is executed.
	QueryWithTenant(ctx context.Context, tc tenant.Context, query string, params ...any) ([]Record, error)

	// InsertMany stamps and persists all records in a single transaction.
	// Either every record commits or none do.
	InsertMany(ctx context.Context, tc tenant.Context, kind registry.Kind, records []Record) (BulkResult, error)
}
