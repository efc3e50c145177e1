package boundary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// fakeStore records calls and serves canned records keyed by kind/id.
type fakeStore struct {
	store.IsolationStore

	records  map[string]store.Record
	inserted []store.Record
	lastTC   tenant.Context
}

func key(kind registry.Kind, id any) string {
	return kind.String() + "/" + toString(id)
}

func toString(id any) string {
	if s, ok := id.(string); ok {
		return s
	}
	return "?"
}

func (f *fakeStore) GetByID(_ context.Context, tc tenant.Context, kind registry.Kind, id any) (store.Record, error) {
	f.lastTC = tc
	if record, ok := f.records[key(kind, id)]; ok {
		return record, nil
	}
	return nil, store.ErrNotFoundOrForbidden
}

func (f *fakeStore) Insert(_ context.Context, tc tenant.Context, kind registry.Kind, payload store.Record) (store.Record, error) {
	f.lastTC = tc
	stamped := store.Record{}
	for k, v := range payload {
		stamped[k] = v
	}
	stamped[registry.OwnerColumn] = tc.TenantID
	f.inserted = append(f.inserted, stamped)
	return stamped, nil
}

func TestNewRequiresTenant(t *testing.T) {
	_, err := New(tenant.Context{}, &fakeStore{})
	assert.ErrorIs(t, err, store.ErrAuthenticationRequired)
}

func TestGetByIDDenialIsAccessDenied(t *testing.T) {
	fs := &fakeStore{records: map[string]store.Record{}}
	checker, err := New(tenant.Context{TenantID: "platform-1"}, fs)
	require.NoError(t, err)

	_, err = checker.GetByID(context.Background(), registry.KindStudents, "s-1")
	assert.ErrorIs(t, err, store.ErrAccessDenied)
}

func TestGetByIDReturnsOwnedRecord(t *testing.T) {
	fs := &fakeStore{records: map[string]store.Record{
		key(registry.KindStudents, "s-1"): {"id": "s-1", "first_name": "Ana"},
	}}
	checker, err := New(tenant.Context{TenantID: "platform-1"}, fs)
	require.NoError(t, err)

	record, err := checker.GetByID(context.Background(), registry.KindStudents, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", record["first_name"])
	assert.Equal(t, "platform-1", fs.lastTC.TenantID)
}

func TestCompoundFlowStopsAtFirstDenial(t *testing.T) {
	fs := &fakeStore{records: map[string]store.Record{
		key(registry.KindStudents, "s-1"): {"id": "s-1"},
		// semester sem-9 is missing (or foreign); enrollment must not happen
	}}
	checker, err := New(tenant.Context{TenantID: "platform-1"}, fs)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = checker.GetByID(ctx, registry.KindStudents, "s-1")
	require.NoError(t, err)

	_, err = checker.GetByID(ctx, registry.KindSemesters, "sem-9")
	require.ErrorIs(t, err, store.ErrAccessDenied)

	assert.Empty(t, fs.inserted)
}

func TestInsertStampsThroughStore(t *testing.T) {
	fs := &fakeStore{}
	checker, err := New(tenant.Context{TenantID: "platform-1"}, fs)
	require.NoError(t, err)

	record, err := checker.Insert(context.Background(), registry.KindEnrollments, store.Record{
		"student_id":  "s-1",
		"semester_id": "sem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "platform-1", record[registry.OwnerColumn])
}
