package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEnrollment(t *testing.T) {
	srv, mock := newTestServer(t)
	token := bearerToken(t, "admin@one.example", "platform-1")

	mock.ExpectQuery(`SELECT \* FROM students WHERE id = .+ AND platform_id = .+ LIMIT 1`).
		WithArgs("s-1", "platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1"))
	mock.ExpectQuery(`SELECT \* FROM semesters WHERE id = .+ AND platform_id = .+ LIMIT 1`).
		WithArgs("sem-1", "platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sem-1"))
	mock.ExpectQuery(`INSERT INTO enrollments \(enrolled_on,semester_id,student_id,platform_id\) VALUES \(.+\) RETURNING \*`).
		WithArgs("2026-01-10", "sem-1", "s-1", "platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "semester_id", "platform_id"}).
			AddRow("e-1", "s-1", "sem-1", "platform-1"))

	body := []byte(`{"student_id":"s-1","semester_id":"sem-1","enrolled_on":"2026-01-10"}`)
	w := doRequest(srv, "POST", "/enrollments", token, body)

	assert.Equal(t, http.StatusCreated, w.Code)
	var record map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "platform-1", record["platform_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentStopsAtForeignSemester(t *testing.T) {
	srv, mock := newTestServer(t)
	token := bearerToken(t, "admin@one.example", "platform-1")

	mock.ExpectQuery(`SELECT \* FROM students WHERE id = .+ AND platform_id = .+ LIMIT 1`).
		WithArgs("s-1", "platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1"))
	// The semester belongs to another tenant, so the scoped lookup is empty.
	mock.ExpectQuery(`SELECT \* FROM semesters WHERE id = .+ AND platform_id = .+ LIMIT 1`).
		WithArgs("sem-9", "platform-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body := []byte(`{"student_id":"s-1","semester_id":"sem-9"}`)
	w := doRequest(srv, "POST", "/enrollments", token, body)

	// Denial of the compound flow reads as 403; the insert never ran.
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEnrollmentRequiresBothIDs(t *testing.T) {
	srv, mock := newTestServer(t)
	token := bearerToken(t, "admin@one.example", "platform-1")

	body := []byte(`{"student_id":"s-1"}`)
	w := doRequest(srv, "POST", "/enrollments", token, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
