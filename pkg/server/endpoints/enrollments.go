package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/smartattend/smartattend-go/pkg/boundary"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/store"
	"github.com/smartattend/smartattend-go/pkg/tenant"
)

// EnrollmentRequest joins a student to a semester
type EnrollmentRequest struct {
	StudentID  string `json:"student_id"`
	SemesterID string `json:"semester_id"`
	EnrolledOn string `json:"enrolled_on"`
}

// RegisterEnrollmentsEndpoints registers the enrollments API endpoints
func RegisterEnrollmentsEndpoints(srv *server.Server, api *mux.Router) {
	api.HandleFunc("/enrollments", handleCreateEnrollment(srv)).Methods("POST")
	api.HandleFunc("/enrollments", handleList(srv, srv.Store, registry.KindEnrollments)).Methods("GET")
	api.HandleFunc("/enrollments/{id}", handleGetByID(srv, srv.Store, registry.KindEnrollments)).Methods("GET")
	api.HandleFunc("/enrollments/{id}", handleDelete(srv, srv.Store, registry.KindEnrollments)).Methods("DELETE")
}

// handleCreateEnrollment verifies the student and the semester both belong to
// the tenant before writing the enrollment. The first failed lookup aborts
// the flow; nothing is written.
func handleCreateEnrollment(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.Get(r.Context())
		if !ok {
			respondWithStoreError(w, store.ErrAuthenticationRequired)
			return
		}

		var req EnrollmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed request body")
			return
		}
		if req.StudentID == "" || req.SemesterID == "" {
			respondWithError(w, http.StatusBadRequest, "student_id and semester_id are required")
			return
		}

		checker, err := boundary.New(tc, srv.Store)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		if _, err := checker.GetByID(r.Context(), registry.KindStudents, req.StudentID); err != nil {
			auditDenied(srv, r, tc, registry.KindStudents, req.StudentID, "enroll", err)
			respondWithStoreError(w, err)
			return
		}
		if _, err := checker.GetByID(r.Context(), registry.KindSemesters, req.SemesterID); err != nil {
			auditDenied(srv, r, tc, registry.KindSemesters, req.SemesterID, "enroll", err)
			respondWithStoreError(w, err)
			return
		}

		payload := store.Record{
			"student_id":  req.StudentID,
			"semester_id": req.SemesterID,
		}
		if req.EnrolledOn != "" {
			payload["enrolled_on"] = req.EnrolledOn
		}

		record, err := checker.Insert(r.Context(), registry.KindEnrollments, payload)
		if err != nil {
			respondWithStoreError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, record)
	}
}
