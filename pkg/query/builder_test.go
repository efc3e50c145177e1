package query

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

var ctxT1 = tenant.Context{TenantID: "platform-1", Subject: "admin@one.example"}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return gormDB, mock
}

func TestToSqlPutsOwnershipPredicateFirst(t *testing.T) {
	reg := registry.Default()

	q, err := From(reg, registry.KindStudents).
		Where("grade", "10").
		OrderBy("last_name", false).
		Limit(25).
		Offset(50).
		WithTenant(ctxT1)
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT * FROM students WHERE platform_id = ? AND grade = ? ORDER BY last_name ASC LIMIT 25 OFFSET 50",
		sql)
	assert.Equal(t, []any{"platform-1", "10"}, args)
}

func TestWhereValidatesAtBuildTime(t *testing.T) {
	reg := registry.Default()

	b := From(reg, registry.KindStudents).Where("grade) OR (1=1", "x")

	var verr *store.ValidationError
	require.ErrorAs(t, b.Err(), &verr)

	// The poisoned chain refuses to bind.
	_, err := b.WithTenant(ctxT1)
	require.ErrorAs(t, err, &verr)
}

func TestExecuteRequiresTenant(t *testing.T) {
	// A zero-value TenantQuery (the only way to reach Execute unbound)
	// fails before building SQL.
	var q TenantQuery
	_, err := q.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnboundQuery)

	_, err = q.Count(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnboundQuery)
}

func TestWithTenantRejectsEmptyContext(t *testing.T) {
	reg := registry.Default()

	_, err := From(reg, registry.KindStudents).WithTenant(tenant.Context{})
	assert.ErrorIs(t, err, store.ErrAuthenticationRequired)
}

func TestTemplateIsImmutable(t *testing.T) {
	reg := registry.Default()

	// One shared template, branched twice. Neither branch may leak its
	// conditions into the other.
	template := From(reg, registry.KindStudents).Where("is_active", true)

	branchA := template.Where("grade", "10")
	branchB := template.Where("section", "B")

	qa, err := branchA.WithTenant(ctxT1)
	require.NoError(t, err)
	qb, err := branchB.WithTenant(ctxT1)
	require.NoError(t, err)

	sqlA, _, err := qa.ToSql()
	require.NoError(t, err)
	sqlB, _, err := qb.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlA, "grade = ?")
	assert.NotContains(t, sqlA, "section")
	assert.Contains(t, sqlB, "section = ?")
	assert.NotContains(t, sqlB, "grade = ?")
}

func TestUnknownKind(t *testing.T) {
	reg := registry.Default()

	b := From(reg, registry.Kind(99))
	var verr *store.ValidationError
	require.ErrorAs(t, b.Err(), &verr)
}

func TestSelectValidatesColumns(t *testing.T) {
	reg := registry.Default()

	b := From(reg, registry.KindStudents).Select("first_name", "last_name")
	require.NoError(t, b.Err())

	// created_at is selectable only because the descriptor lists it as
	// sortable; no column names live outside the registry.
	b = From(reg, registry.KindStudents).Select("created_at")
	require.NoError(t, b.Err())

	b = From(reg, registry.KindStudents).Select("password_hash")
	var verr *store.ValidationError
	require.ErrorAs(t, b.Err(), &verr)
}

func TestExecuteRunsScopedQuery(t *testing.T) {
	reg := registry.Default()
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT first_name FROM students WHERE platform_id = .+ AND grade = .+`).
		WithArgs("platform-1", "10").
		WillReturnRows(sqlmock.NewRows([]string{"first_name"}).AddRow("Ana"))

	q, err := From(reg, registry.KindStudents).
		Select("first_name").
		Where("grade", "10").
		WithTenant(ctxT1)
	require.NoError(t, err)

	records, err := q.Execute(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana", records[0]["first_name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountIgnoresPagination(t *testing.T) {
	reg := registry.Default()
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM students WHERE platform_id = .+`).
		WithArgs("platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))

	q, err := From(reg, registry.KindStudents).Limit(5).Offset(10).WithTenant(ctxT1)
	require.NoError(t, err)

	total, err := q.Count(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
