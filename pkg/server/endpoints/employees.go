package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/smartattend/smartattend-go/pkg/query"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// RegisterEmployeesEndpoints registers the employees API endpoints. Listing
// goes through the fluent builder so reporting-style reads share one
// scoped-query path.
func RegisterEmployeesEndpoints(srv *server.Server, api *mux.Router) {
	api.HandleFunc("/employees", handleListEmployees(srv)).Methods("GET")
	api.HandleFunc("/employees/{id}", handleGetByID(srv, srv.Store, registry.KindEmployees)).Methods("GET")
}

func handleListEmployees(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		q := r.URL.Query()
		b := query.From(srv.Registry, registry.KindEmployees)

		for name, values := range q {
			if reservedListParams[name] || len(values) == 0 {
				continue
			}
			b = b.Where(name, values[0])
		}

		if orderBy := q.Get("order_by"); orderBy != "" {
			b = b.OrderBy(orderBy, q.Get("desc") == "true")
		}
		if limitStr := q.Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
				b = b.Limit(l)
			}
		}
		if offsetStr := q.Get("offset"); offsetStr != "" {
			if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
				b = b.Offset(o)
			}
		}

		tq, err := b.WithTenant(tc)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		if q.Get("count") == "true" {
			count, err := tq.Count(r.Context(), srv.DB)
			if err != nil {
				respondWithStoreError(w, err)
				return
			}
			respondWithJSON(w, http.StatusOK, map[string]int{"count": count})
			return
		}

		records, err := tq.Execute(r.Context(), srv.DB)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]any{
			"records": records,
			"count":   len(records),
		})
	}
}
