package gorm

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// List pagination bounds used when the server does not configure its own.
const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// Ensure Store implements store.IsolationStore
var _ store.IsolationStore = (*Store)(nil)

// Store implements store.IsolationStore using GORM. Statements are composed
// with squirrel so caller-controlled values only ever reach the database as
// bound parameters; column and table names come from the registry alone.
type Store struct {
	db           *gorm.DB
	registry     *registry.Registry
	limitDefault int
	limitMax     int
}

// NewStore creates a Store with default pagination bounds.
func NewStore(db *gorm.DB, reg *registry.Registry) *Store {
	return NewStoreWithLimits(db, reg, DefaultListLimit, MaxListLimit)
}

// NewStoreWithLimits creates a Store with configured pagination bounds.
func NewStoreWithLimits(db *gorm.DB, reg *registry.Registry, limitDefault, limitMax int) *Store {
	if limitDefault <= 0 {
		limitDefault = DefaultListLimit
	}
	if limitMax <= 0 {
		limitMax = MaxListLimit
	}
	return &Store{db: db, registry: reg, limitDefault: limitDefault, limitMax: limitMax}
}

// resolve validates the tenant context and resolves the kind. Both checks
// run before any statement is built.
func (s *Store) resolve(tc tenant.Context, kind registry.Kind) (*registry.Descriptor, error) {
	if !tc.Valid() {
		return nil, store.ErrAuthenticationRequired
	}
	desc, ok := s.registry.Lookup(kind)
	if !ok {
		return nil, store.NewValidationError("kind", fmt.Sprintf("unknown resource kind %q", kind))
	}
	return desc, nil
}

// scan runs a query and returns rows as generic records.
func (s *Store) scan(ctx context.Context, op, query string, args []interface{}) ([]store.Record, error) {
	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, store.NewInternalError(op, err)
	}
	records := make([]store.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, store.Record(row))
	}
	return records, nil
}

// List returns records owned by the tenant, optionally filtered and paged.
func (s *Store) List(ctx context.Context, tc tenant.Context, kind registry.Kind, opts store.ListOptions) (store.ListResult, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return store.ListResult{}, err
	}

	filters, err := sortedFilters(desc, opts.Filters)
	if err != nil {
		return store.ListResult{}, err
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = desc.IDColumn
	} else if !desc.CanSort(orderBy) {
		return store.ListResult{}, store.NewValidationError(orderBy, "column is not sortable")
	}
	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.limitDefault
	}
	if limit > s.limitMax {
		limit = s.limitMax
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	// Ownership predicate first, always ANDed with any caller filters.
	q := sq.Select("*").From(desc.Table).
		Where(sq.Eq{desc.OwnerColumn: tc.TenantID})
	for _, f := range filters {
		q = q.Where(sq.Eq{f.column: f.value})
	}
	q = q.OrderBy(orderBy + " " + direction).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := q.ToSql()
	if err != nil {
		return store.ListResult{}, store.NewInternalError("list", err)
	}

	records, err := s.scan(ctx, "list", query, args)
	if err != nil {
		return store.ListResult{}, err
	}

	// Total uses the identical scoped predicate, without pagination.
	cq := sq.Select("COUNT(*)").From(desc.Table).
		Where(sq.Eq{desc.OwnerColumn: tc.TenantID})
	for _, f := range filters {
		cq = cq.Where(sq.Eq{f.column: f.value})
	}
	countQuery, countArgs, err := cq.ToSql()
	if err != nil {
		return store.ListResult{}, store.NewInternalError("list count", err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Raw(countQuery, countArgs...).Scan(&total).Error; err != nil {
		return store.ListResult{}, store.NewInternalError("list count", err)
	}

	return store.ListResult{
		Records: records,
		Total:   int(total),
		Count:   len(records),
	}, nil
}

// GetByID fetches one record within the tenant's scope. The lookup is a
// single query combining the id and ownership predicates, so a foreign
// tenant's row and a nonexistent row produce identical results.
func (s *Store) GetByID(ctx context.Context, tc tenant.Context, kind registry.Kind, id any) (store.Record, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Select("*").From(desc.Table).
		Where(sq.Eq{desc.IDColumn: id}).
		Where(sq.Eq{desc.OwnerColumn: tc.TenantID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, store.NewInternalError("get", err)
	}

	records, err := s.scan(ctx, "get", query, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFoundOrForbidden
	}
	return records[0], nil
}

// Insert persists a record with the owner column stamped to the tenant,
// overwriting any owner value present in the payload.
func (s *Store) Insert(ctx context.Context, tc tenant.Context, kind registry.Kind, payload store.Record) (store.Record, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return nil, err
	}

	columns, values, err := stampedRow(desc, tc, payload)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Insert(desc.Table).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, store.NewInternalError("insert", err)
	}

	records, err := s.scan(ctx, "insert", query, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.NewInternalError("insert", fmt.Errorf("no row returned for %s", desc.Table))
	}
	return records[0], nil
}

// Update patches a record the tenant owns. The statement matches on both id
// and owner; zero rows affected is reported as not found, whether the row is
// missing or belongs to another tenant.
func (s *Store) Update(ctx context.Context, tc tenant.Context, kind registry.Kind, id any, patch store.Record) (store.Record, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return nil, err
	}

	if len(patch) == 0 {
		return nil, store.NewValidationError("patch", "no columns to update")
	}
	setMap := make(map[string]interface{}, len(patch))
	for column, value := range patch {
		if column == desc.OwnerColumn {
			return nil, store.NewValidationError(column, "ownership cannot be modified")
		}
		if !desc.CanWrite(column) {
			return nil, store.NewValidationError(column, "column is not writable")
		}
		setMap[column] = value
	}

	query, args, err := sq.Update(desc.Table).
		SetMap(setMap).
		Where(sq.Eq{desc.IDColumn: id}).
		Where(sq.Eq{desc.OwnerColumn: tc.TenantID}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, store.NewInternalError("update", err)
	}

	records, err := s.scan(ctx, "update", query, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFoundOrForbidden
	}
	return records[0], nil
}

// Delete removes a record the tenant owns and returns the deleted row.
func (s *Store) Delete(ctx context.Context, tc tenant.Context, kind registry.Kind, id any) (store.Record, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Delete(desc.Table).
		Where(sq.Eq{desc.IDColumn: id}).
		Where(sq.Eq{desc.OwnerColumn: tc.TenantID}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, store.NewInternalError("delete", err)
	}

	records, err := s.scan(ctx, "delete", query, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrNotFoundOrForbidden
	}
	return records[0], nil
}

// InsertMany stamps and persists all records in one transaction. Validation
// runs over every record before the transaction opens, so a bad record means
// nothing is written.
func (s *Store) InsertMany(ctx context.Context, tc tenant.Context, kind registry.Kind, records []store.Record) (store.BulkResult, error) {
	desc, err := s.resolve(tc, kind)
	if err != nil {
		return store.BulkResult{}, err
	}
	if len(records) == 0 {
		return store.BulkResult{Records: []store.Record{}}, nil
	}

	type row struct {
		columns []string
		values  []interface{}
	}
	rows := make([]row, 0, len(records))
	for i, record := range records {
		columns, values, err := stampedRow(desc, tc, record)
		if err != nil {
			return store.BulkResult{}, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row{columns: columns, values: values})
	}

	inserted := make([]store.Record, 0, len(rows))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			query, args, err := sq.Insert(desc.Table).
				Columns(r.columns...).
				Values(r.values...).
				Suffix("RETURNING *").
				ToSql()
			if err != nil {
				return err
			}

			var out []map[string]interface{}
			if err := tx.Raw(query, args...).Scan(&out).Error; err != nil {
				return err
			}
			if len(out) == 0 {
				return fmt.Errorf("no row returned for %s", desc.Table)
			}
			inserted = append(inserted, store.Record(out[0]))
		}
		return nil
	})
	if err != nil {
		return store.BulkResult{}, store.NewInternalError("insert many", err)
	}

	return store.BulkResult{InsertedCount: len(inserted), Records: inserted}, nil
}

type filter struct {
	column string
	value  any
}

// sortedFilters validates filter columns against the allowlist and returns
// them in deterministic order.
func sortedFilters(desc *registry.Descriptor, filters map[string]any) ([]filter, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	columns := make([]string, 0, len(filters))
	for column := range filters {
		if !desc.CanFilter(column) {
			return nil, store.NewValidationError(column, "column is not filterable")
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	out := make([]filter, 0, len(columns))
	for _, column := range columns {
		out = append(out, filter{column: column, value: filters[column]})
	}
	return out, nil
}

// stampedRow validates a payload's columns and returns the insert columns
// and values with the owner column set to the tenant. A caller-supplied
// owner value is dropped, never honored.
func stampedRow(desc *registry.Descriptor, tc tenant.Context, payload store.Record) ([]string, []interface{}, error) {
	columns := make([]string, 0, len(payload)+1)
	for column := range payload {
		if column == desc.OwnerColumn {
			// Stamped below regardless of what the caller sent.
			continue
		}
		if !desc.CanWrite(column) {
			return nil, nil, store.NewValidationError(column, "column is not writable")
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	values := make([]interface{}, 0, len(columns)+1)
	for _, column := range columns {
		values = append(values, payload[column])
	}

	columns = append(columns, desc.OwnerColumn)
	values = append(values, tc.TenantID)
	return columns, values, nil
}
