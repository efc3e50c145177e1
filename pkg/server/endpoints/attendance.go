package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/server/middleware"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// summaryByStatus aggregates attendance within a date range. The ownership
// predicate is injected by the store before execution.
const summaryByStatus = `SELECT status, COUNT(*) AS total ` +
	`FROM attendance_records WHERE recorded_on >= ? AND recorded_on < ? GROUP BY status ORDER BY status`

// RegisterAttendanceEndpoints registers the attendance API endpoints
func RegisterAttendanceEndpoints(srv *server.Server, api *mux.Router) {
	st := srv.Store

	api.HandleFunc("/attendance", handleList(srv, st, registry.KindAttendanceRecords)).Methods("GET")
	api.HandleFunc("/attendance", handleInsert(srv, st, registry.KindAttendanceRecords)).Methods("POST")
	api.HandleFunc("/attendance/summary", handleAttendanceSummary(srv)).Methods("GET")
	api.HandleFunc("/attendance/{id}", handleGetByID(srv, st, registry.KindAttendanceRecords)).Methods("GET")
}

func handleAttendanceSummary(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		q := r.URL.Query()
		from := q.Get("from")
		to := q.Get("to")
		if from == "" || to == "" {
			respondWithError(w, http.StatusBadRequest, "from and to are required")
			return
		}

		records, err := srv.Store.QueryWithTenant(r.Context(), tc, summaryByStatus, from, to)
		if err != nil {
			if errors.Is(err, store.ErrUnscopableQuery) && srv.Sink != nil {
				srv.Sink.Enqueue(audit.UnscopedQueryEvent{
					TenantID:  tc.TenantID,
					Principal: tc.Subject,
					ClientIP:  middleware.ClientIP(r),
					Reason:    err.Error(),
				})
			}
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]any{
			"from":    from,
			"to":      to,
			"summary": records,
		})
	}
}
