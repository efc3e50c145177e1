package query

import (
	"context"
	"errors"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// ErrUnboundQuery is a programming error: a query reached execution without
// a tenant binding. The type system makes this hard (Execute only exists on
// TenantQuery), so it can only happen through a zero-value TenantQuery.
var ErrUnboundQuery = errors.New("query executed without tenant binding")

type condition struct {
	column string
	value  any
}

// Builder accumulates a scoped read. Every chained call returns a new value;
// a Builder is never mutated in place, so a partially-built template can be
// shared across goroutines and requests safely. A Builder cannot be
// executed: only WithTenant produces an executable TenantQuery.
type Builder struct {
	desc       *registry.Descriptor
	columns    []string
	conditions []condition
	orderBy    string
	descending bool
	limit      int64
	offset     int64
	err        error
}

// From starts a builder for a registered resource kind.
func From(reg *registry.Registry, kind registry.Kind) Builder {
	desc, ok := reg.Lookup(kind)
	if !ok {
		return Builder{err: store.NewValidationError("kind", "unknown resource kind")}
	}
	return Builder{desc: desc, limit: -1, offset: -1}
}

// Err returns the first validation failure recorded while building the
// chain, if any. Chains fail fast: once poisoned, no SQL is ever built.
func (b Builder) Err() error {
	return b.err
}

// Select narrows the projected columns. Columns must be filterable or
// sortable (i.e. known to the descriptor); unknown names poison the chain.
func (b Builder) Select(columns ...string) Builder {
	if b.err != nil {
		return b
	}
	for _, column := range columns {
		if !b.knownColumn(column) {
			b.err = store.NewValidationError(column, "column is not selectable")
			return b
		}
	}
	// Copy before append so a shared template never observes the change.
	next := make([]string, len(b.columns), len(b.columns)+len(columns))
	copy(next, b.columns)
	b.columns = append(next, columns...)
	return b
}

// Where adds a parameterized equality filter. The column is validated when
// the call is made, not at execute time.
func (b Builder) Where(column string, value any) Builder {
	if b.err != nil {
		return b
	}
	if !b.desc.CanFilter(column) {
		b.err = store.NewValidationError(column, "column is not filterable")
		return b
	}
	next := make([]condition, len(b.conditions), len(b.conditions)+1)
	copy(next, b.conditions)
	b.conditions = append(next, condition{column: column, value: value})
	return b
}

// OrderBy sets the sort column, validated against the sort allowlist.
func (b Builder) OrderBy(column string, descending bool) Builder {
	if b.err != nil {
		return b
	}
	if !b.desc.CanSort(column) {
		b.err = store.NewValidationError(column, "column is not sortable")
		return b
	}
	b.orderBy = column
	b.descending = descending
	return b
}

// Limit bounds the result size.
func (b Builder) Limit(n int) Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = store.NewValidationError("limit", "must not be negative")
		return b
	}
	b.limit = int64(n)
	return b
}

// Offset skips into the scoped result set.
func (b Builder) Offset(n int) Builder {
	if b.err != nil {
		return b
	}
	if n < 0 {
		b.err = store.NewValidationError("offset", "must not be negative")
		return b
	}
	b.offset = int64(n)
	return b
}

func (b Builder) knownColumn(column string) bool {
	return column == b.desc.IDColumn || column == b.desc.OwnerColumn ||
		b.desc.CanFilter(column) || b.desc.CanSort(column) || b.desc.CanWrite(column)
}

// WithTenant binds the builder to a tenant, yielding the only type that can
// execute. Validation failures recorded during the chain surface here.
func (b Builder) WithTenant(tc tenant.Context) (TenantQuery, error) {
	if b.err != nil {
		return TenantQuery{}, b.err
	}
	if b.desc == nil {
		return TenantQuery{}, ErrUnboundQuery
	}
	if !tc.Valid() {
		return TenantQuery{}, store.ErrAuthenticationRequired
	}
	return TenantQuery{builder: b, tc: tc, bound: true}, nil
}

// TenantQuery is a builder bound to one tenant context. It must not be
// reused across tenants; bind a fresh one from the shared template instead.
type TenantQuery struct {
	builder Builder
	tc      tenant.Context
	bound   bool
}

// ToSql compiles the query. The ownership predicate is always the first
// WHERE clause, ANDed with any chained filters.
func (q TenantQuery) ToSql() (string, []any, error) {
	if !q.bound {
		return "", nil, ErrUnboundQuery
	}
	b := q.builder

	columns := b.columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}

	sel := sq.Select(columns...).From(b.desc.Table).
		Where(sq.Eq{b.desc.OwnerColumn: q.tc.TenantID})
	for _, c := range b.conditions {
		sel = sel.Where(sq.Eq{c.column: c.value})
	}
	if b.orderBy != "" {
		direction := " ASC"
		if b.descending {
			direction = " DESC"
		}
		sel = sel.OrderBy(b.orderBy + direction)
	}
	if b.limit >= 0 {
		sel = sel.Limit(uint64(b.limit))
	}
	if b.offset >= 0 {
		sel = sel.Offset(uint64(b.offset))
	}
	return sel.ToSql()
}

// Execute runs the compiled query and returns the matching records.
func (q TenantQuery) Execute(ctx context.Context, db *gorm.DB) ([]store.Record, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []map[string]interface{}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, store.NewInternalError("query execute", err)
	}
	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, store.Record(row))
	}
	return records, nil
}

// Count runs a COUNT(*) with the identical scoped predicate, ignoring any
// projection, ordering and pagination on the chain.
func (q TenantQuery) Count(ctx context.Context, db *gorm.DB) (int, error) {
	if !q.bound {
		return 0, ErrUnboundQuery
	}
	b := q.builder

	sel := sq.Select("COUNT(*)").From(b.desc.Table).
		Where(sq.Eq{b.desc.OwnerColumn: q.tc.TenantID})
	for _, c := range b.conditions {
		sel = sel.Where(sq.Eq{c.column: c.value})
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return 0, store.NewInternalError("query count", err)
	}

	var total int64
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&total).Error; err != nil {
		return 0, store.NewInternalError("query count", err)
	}
	return int(total), nil
}

// Filters returns the chained filter columns in sorted order. Useful for
// logging which filters a request exercised.
func (q TenantQuery) Filters() []string {
	columns := make([]string, 0, len(q.builder.conditions))
	for _, c := range q.builder.conditions {
		columns = append(columns, c.column)
	}
	sort.Strings(columns)
	return columns
}

// Tenant returns the bound tenant identifier.
func (q TenantQuery) Tenant() string {
	return q.tc.TenantID
}

// String renders the compiled SQL for debugging; errors render as a
// placeholder rather than panicking.
func (q TenantQuery) String() string {
	query, _, err := q.ToSql()
	if err != nil {
		return "<invalid query: " + err.Error() + ">"
	}
	return strings.TrimSpace(query)
}
