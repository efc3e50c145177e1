package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartattend/smartattend-go/pkg/store"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithStoreError maps isolation errors to their HTTP status. A denial
// and a miss share a body so responses leak nothing about foreign tenants.
func respondWithStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError

	switch {
	case errors.Is(err, store.ErrAuthenticationRequired):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, store.ErrAccessDenied):
		respondWithError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, store.ErrNotFoundOrForbidden):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrUnscopableQuery):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
