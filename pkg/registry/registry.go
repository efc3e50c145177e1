package registry

// Descriptor describes how a resource kind maps onto its tenant-scoped table.
// The column sets are allowlists: any caller-supplied column name that is not
// listed here is rejected before a statement is ever built.
type Descriptor struct {
	Kind        Kind
	Table       string
	OwnerColumn string
	IDColumn    string

	writable   map[string]struct{}
	filterable map[string]struct{}
	sortable   map[string]struct{}
}

// CanWrite reports whether a column may appear in insert payloads or update
// patches. The owner column is never writable; it is stamped by the store.
func (d *Descriptor) CanWrite(column string) bool {
	_, ok := d.writable[column]
	return ok
}

// CanFilter reports whether a column may be used in caller-supplied filters.
func (d *Descriptor) CanFilter(column string) bool {
	_, ok := d.filterable[column]
	return ok
}

// CanSort reports whether a column may be used for ordering.
func (d *Descriptor) CanSort(column string) bool {
	_, ok := d.sortable[column]
	return ok
}

// Registry is the closed, process-wide mapping from resource kinds to their
// descriptors. It is built once at startup and read-only thereafter, so it is
// safe to share across requests without locking.
type Registry struct {
	byKind  map[Kind]*Descriptor
	byTable map[string]*Descriptor
}

// New builds a registry from a fixed set of descriptors.
func New(descriptors ...*Descriptor) *Registry {
	r := &Registry{
		byKind:  make(map[Kind]*Descriptor, len(descriptors)),
		byTable: make(map[string]*Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		r.byKind[d.Kind] = d
		r.byTable[d.Table] = d
	}
	return r
}

// Lookup resolves a kind to its descriptor.
func (r *Registry) Lookup(kind Kind) (*Descriptor, bool) {
	d, ok := r.byKind[kind]
	return d, ok
}

// LookupTable resolves a table name to its descriptor. Used to bind raw
// queries to an owner column.
func (r *Registry) LookupTable(table string) (*Descriptor, bool) {
	d, ok := r.byTable[table]
	return d, ok
}

// Kinds returns the registered kinds.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	return kinds
}

func columnSet(columns ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return set
}

// OwnerColumn is the tenant owner column shared by every scoped table.
const OwnerColumn = "platform_id"

func describe(kind Kind, table string, writable, filterable, sortable []string) *Descriptor {
	return &Descriptor{
		Kind:        kind,
		Table:       table,
		OwnerColumn: OwnerColumn,
		IDColumn:    "id",
		writable:    columnSet(writable...),
		filterable:  columnSet(filterable...),
		sortable:    columnSet(sortable...),
	}
}

// Default returns the SmartAttend resource registry.
func Default() *Registry {
	return New(
		describe(KindStudents, "students",
			[]string{"student_no", "first_name", "last_name", "email", "grade", "section", "is_active"},
			[]string{"student_no", "email", "grade", "section", "is_active"},
			[]string{"id", "student_no", "last_name", "grade", "created_at"},
		),
		describe(KindEmployees, "employees",
			[]string{"employee_no", "first_name", "last_name", "email", "department", "title", "is_active"},
			[]string{"employee_no", "email", "department", "is_active"},
			[]string{"id", "employee_no", "last_name", "department", "created_at"},
		),
		describe(KindAttendanceRecords, "attendance_records",
			[]string{"student_id", "recorded_on", "status", "method"},
			[]string{"student_id", "recorded_on", "status", "method"},
			[]string{"id", "recorded_on", "created_at"},
		),
		describe(KindIncidents, "incidents",
			[]string{"title", "description", "severity", "status", "reported_by"},
			[]string{"severity", "status", "reported_by"},
			[]string{"id", "severity", "created_at"},
		),
		describe(KindSemesters, "semesters",
			[]string{"name", "starts_on", "ends_on"},
			[]string{"name"},
			[]string{"id", "starts_on", "created_at"},
		),
		describe(KindEnrollments, "enrollments",
			[]string{"student_id", "semester_id", "enrolled_on"},
			[]string{"student_id", "semester_id"},
			[]string{"id", "enrolled_on", "created_at"},
		),
	)
}
