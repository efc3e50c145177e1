package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartattend/smartattend-go/pkg/audit"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// maxInspectBody bounds how much of a request body the enforcer will buffer
// while looking for a declared owner field.
const maxInspectBody = 1 << 20

// TenantEnforcer rejects requests whose declared owner disagrees with the
// authenticated tenant. The owner may be declared in a path variable, a query
// parameter, or (for updates) a JSON body field; all three are checked, and
// any mismatch is a 403 plus an audit violation. POST bodies are not checked
// here because inserts overwrite the owner column with the tenant's own ID.
type TenantEnforcer struct {
	sink *audit.Sink
}

// NewTenantEnforcer creates the enforcement middleware. sink may be nil.
func NewTenantEnforcer(sink *audit.Sink) *TenantEnforcer {
	return &TenantEnforcer{sink: sink}
}

// Middleware returns an HTTP middleware that enforces owner consistency
func (e *TenantEnforcer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok || !tc.Valid() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Authentication required"))
			return
		}

		if declared, ok := mux.Vars(r)[registry.OwnerColumn]; ok && declared != tc.TenantID {
			e.deny(w, r, tc, declared, "path")
			return
		}

		if declared := r.URL.Query().Get(registry.OwnerColumn); declared != "" && declared != tc.TenantID {
			e.deny(w, r, tc, declared, "query")
			return
		}

		if r.Method == http.MethodPut || r.Method == http.MethodPatch {
			declared, ok, err := e.inspectBody(r)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("Malformed request body"))
				return
			}
			if ok && declared != tc.TenantID {
				e.deny(w, r, tc, declared, "body")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// inspectBody peeks at a JSON object body for a declared owner field and
// restores the body for downstream handlers.
func (e *TenantEnforcer) inspectBody(r *http.Request) (string, bool, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", false, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInspectBody))
	if err != nil {
		return "", false, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		// Non-object bodies are the handler's problem
		return "", false, nil
	}

	raw, ok := payload[registry.OwnerColumn]
	if !ok {
		return "", false, nil
	}

	var declared string
	if err := json.Unmarshal(raw, &declared); err != nil {
		return "", false, err
	}
	return declared, true, nil
}

func (e *TenantEnforcer) deny(w http.ResponseWriter, r *http.Request, tc tenant.Context, declared, where string) {
	if e.sink != nil {
		e.sink.Enqueue(audit.NewViolationEvent(
			tc.TenantID,
			"",
			"",
			tc.Subject,
			r.Method+" "+r.URL.Path,
			ClientIP(r),
			"declared owner "+declared+" in "+where+" does not match authenticated tenant",
		))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Forbidden"})
}
