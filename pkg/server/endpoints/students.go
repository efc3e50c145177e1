package endpoints

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/server/middleware"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// reservedListParams are query parameters consumed by paging and sorting
// rather than treated as column filters.
var reservedListParams = map[string]bool{
	"limit":    true,
	"offset":   true,
	"order_by": true,
	"desc":     true,
	"count":    true,

	registry.OwnerColumn: true,
}

// BulkRequest carries the payload for bulk imports
type BulkRequest struct {
	Records []store.Record `json:"records"`
}

// RegisterStudentsEndpoints registers the students API endpoints
func RegisterStudentsEndpoints(srv *server.Server, api *mux.Router) {
	st := srv.Store

	api.HandleFunc("/students", handleList(srv, st, registry.KindStudents)).Methods("GET")
	api.HandleFunc("/students", handleInsert(srv, st, registry.KindStudents)).Methods("POST")
	api.HandleFunc("/students/bulk", handleBulkInsert(srv, st, registry.KindStudents)).Methods("POST")
	api.HandleFunc("/students/{id}", handleGetByID(srv, st, registry.KindStudents)).Methods("GET")
	api.HandleFunc("/students/{id}", handleUpdate(srv, st, registry.KindStudents)).Methods("PUT")
	api.HandleFunc("/students/{id}", handleDelete(srv, st, registry.KindStudents)).Methods("DELETE")
}

func handleList(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		opts := parseListOptions(r)
		result, err := st.List(r.Context(), tc, kind, opts)
		if err != nil {
			auditDenied(srv, r, tc, kind, "", "list", err)
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, result)
	}
}

func handleGetByID(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		id := mux.Vars(r)["id"]
		record, err := st.GetByID(r.Context(), tc, kind, id)
		if err != nil {
			auditDenied(srv, r, tc, kind, id, "read", err)
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleInsert(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		var payload store.Record
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		record, err := st.Insert(r.Context(), tc, kind, payload)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, record)
	}
}

func handleBulkInsert(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		var req BulkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		if len(req.Records) == 0 {
			respondWithError(w, http.StatusBadRequest, "records must not be empty")
			return
		}

		result, err := st.InsertMany(r.Context(), tc, kind, req.Records)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, result)
	}
}

func handleUpdate(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		id := mux.Vars(r)["id"]
		var patch store.Record
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}

		record, err := st.Update(r.Context(), tc, kind, id, patch)
		if err != nil {
			auditDenied(srv, r, tc, kind, id, "update", err)
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, record)
	}
}

func handleDelete(srv *server.Server, st store.IsolationStore, kind registry.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		id := mux.Vars(r)["id"]
		if _, err := st.Delete(r.Context(), tc, kind, id); err != nil {
			auditDenied(srv, r, tc, kind, id, "delete", err)
			respondWithStoreError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// parseListOptions builds paging, sorting and filters from query parameters.
// Any parameter that isn't reserved is treated as a column filter; the store
// validates names against the resource descriptor.
func parseListOptions(r *http.Request) store.ListOptions {
	q := r.URL.Query()

	opts := store.ListOptions{
		OrderBy: q.Get("order_by"),
		Desc:    q.Get("desc") == "true",
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			opts.Offset = o
		}
	}

	for name, values := range q {
		if reservedListParams[name] || len(values) == 0 {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = map[string]any{}
		}
		opts.Filters[name] = values[0]
	}

	return opts
}

// auditDenied emits a violation event when a scoped operation was refused.
func auditDenied(srv *server.Server, r *http.Request, tc tenant.Context, kind registry.Kind, id, op string, err error) {
	if srv.Sink == nil {
		return
	}
	if !store.IsDenial(err) {
		return
	}
	srv.Sink.Enqueue(audit.NewViolationEvent(
		tc.TenantID,
		kind.String(),
		id,
		tc.Subject,
		op,
		middleware.ClientIP(r),
		"",
	))
}
