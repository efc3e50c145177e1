package endpoints

import (
	"net/http"
	"os"

	"github.com/smartattend/smartattend-go/pkg/server"
)

// StatusResponse reports liveness and component readiness
type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// RegisterStatusEndpoints registers the status endpoints (no auth required)
func RegisterStatusEndpoints(srv *server.Server) {
	srv.Router.HandleFunc("/", handleStatus(srv)).Methods("GET")
	srv.Router.HandleFunc("/status", handleStatus(srv)).Methods("GET")
}

func handleStatus(srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("SMARTATTEND_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}

		resp := StatusResponse{
			Status:   "ok",
			Version:  version,
			Database: "ok",
		}
		code := http.StatusOK

		if srv.DB != nil {
			sqlDB, err := srv.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(r.Context())
			}
			if err != nil {
				resp.Status = "degraded"
				resp.Database = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}

		respondWithJSON(w, code, resp)
	}
}
