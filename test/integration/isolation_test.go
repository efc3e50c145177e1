package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartattend/smartattend-go/pkg/server/middleware"
)

var testCtx *TestContext

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create test context: %v\n", err)
		os.Exit(1)
	}
	testCtx = tc

	code := m.Run()
	tc.Close(ctx)
	os.Exit(code)
}

func requireIntegration(t *testing.T) *TestContext {
	t.Helper()
	if testCtx == nil {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}
	return testCtx
}

func issueToken(t *testing.T, subject, tenantID string) string {
	t.Helper()
	claims := middleware.Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testTokenKey))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, tc *TestContext, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.ServerURL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.HTTPClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestCrossTenantIsolation(t *testing.T) {
	tc := requireIntegration(t)
	tokenA := issueToken(t, "admin@one.example", "platform-iso-a")
	tokenB := issueToken(t, "admin@two.example", "platform-iso-b")

	status, body := doJSON(t, tc, "POST", "/students", tokenA, map[string]any{
		"first_name": "Ana",
		"last_name":  "Reyes",
		"student_no": "iso-1001",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "platform-iso-a", created["platform_id"])

	// The owner sees the row.
	status, body = doJSON(t, tc, "GET", "/students/"+id, tokenA, nil)
	assert.Equal(t, http.StatusOK, status, string(body))

	// The other tenant cannot see it, by ID or in a listing.
	status, _ = doJSON(t, tc, "GET", "/students/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, tc, "GET", "/students?student_no=iso-1001", tokenB, nil)
	require.Equal(t, http.StatusOK, status)
	var listing map[string]any
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, float64(0), listing["total"])

	// Nor mutate or delete it.
	status, _ = doJSON(t, tc, "PUT", "/students/"+id, tokenB, map[string]any{"grade": "12"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, tc, "DELETE", "/students/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The row is still intact for the owner.
	status, body = doJSON(t, tc, "GET", "/students/"+id, tokenA, nil)
	require.Equal(t, http.StatusOK, status)
	var record map[string]any
	require.NoError(t, json.Unmarshal(body, &record))
	assert.Equal(t, "Ana", record["first_name"])
}

func TestInsertStampsOwnerOverPayload(t *testing.T) {
	tc := requireIntegration(t)
	token := issueToken(t, "admin@one.example", "platform-stamp-a")

	// A payload claiming another tenant's owner is stamped over, not honored.
	status, body := doJSON(t, tc, "POST", "/students", token, map[string]any{
		"first_name":  "Luis",
		"student_no":  "stamp-2001",
		"platform_id": "platform-stamp-b",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "platform-stamp-a", created["platform_id"])
}

func TestCrossTenantDeclarationsRejected(t *testing.T) {
	tc := requireIntegration(t)
	token := issueToken(t, "admin@one.example", "platform-decl-a")

	// Query parameter naming a foreign owner.
	status, _ := doJSON(t, tc, "GET", "/students?platform_id=platform-decl-b", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Update body naming a foreign owner.
	status, _ = doJSON(t, tc, "PUT", "/students/any-id", token, map[string]any{
		"grade":       "11",
		"platform_id": "platform-decl-b",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBulkInsertIsAllOrNothing(t *testing.T) {
	tc := requireIntegration(t)
	token := issueToken(t, "admin@one.example", "platform-bulk-a")

	// One record carries a column outside the allowlist; nothing is written.
	status, _ := doJSON(t, tc, "POST", "/students/bulk", token, map[string]any{
		"records": []map[string]any{
			{"first_name": "Ok", "student_no": "bulk-1"},
			{"first_name": "Bad", "password_hash": "x"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := doJSON(t, tc, "GET", "/students?student_no=bulk-1", token, nil)
	require.Equal(t, http.StatusOK, status)
	var listing map[string]any
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, float64(0), listing["total"])

	// A clean batch lands atomically.
	status, body = doJSON(t, tc, "POST", "/students/bulk", token, map[string]any{
		"records": []map[string]any{
			{"first_name": "Uno", "student_no": "bulk-2"},
			{"first_name": "Dos", "student_no": "bulk-3"},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var result map[string]any
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, float64(2), result["inserted_count"])
}

func TestAttendanceSummaryIsScoped(t *testing.T) {
	tc := requireIntegration(t)
	tokenA := issueToken(t, "admin@one.example", "platform-sum-a")
	tokenB := issueToken(t, "admin@two.example", "platform-sum-b")

	for _, rec := range []map[string]any{
		{"student_id": "s-1", "recorded_on": "2026-02-02", "status": "present"},
		{"student_id": "s-2", "recorded_on": "2026-02-02", "status": "absent"},
	} {
		status, body := doJSON(t, tc, "POST", "/attendance", tokenA, rec)
		require.Equal(t, http.StatusCreated, status, string(body))
	}
	status, body := doJSON(t, tc, "POST", "/attendance", tokenB, map[string]any{
		"student_id": "s-9", "recorded_on": "2026-02-02", "status": "present",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = doJSON(t, tc, "GET", "/attendance/summary?from=2026-02-01&to=2026-03-01", tokenA, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var summary struct {
		Summary []map[string]any `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Len(t, summary.Summary, 2)

	// Tenant B's row never bleeds into A's counts.
	for _, row := range summary.Summary {
		assert.Equal(t, float64(1), row["total"], "status %v", row["status"])
	}
}

func TestStatusEndpointIsPublic(t *testing.T) {
	tc := requireIntegration(t)

	status, body := doJSON(t, tc, "GET", "/status", "", nil)
	require.Equal(t, http.StatusOK, status)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["database"])
}
