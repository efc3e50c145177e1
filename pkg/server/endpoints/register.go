package endpoints

import (
	"github.com/smartattend/smartattend-go/pkg/server"
	"github.com/smartattend/smartattend-go/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	authn := middleware.NewAuthenticator(srv.TokenKey, srv.Sink)
	enforcer := middleware.NewTenantEnforcer(srv.Sink)

	// Status endpoints stay outside the authenticated subtree
	RegisterStatusEndpoints(srv)

	api := srv.Router.PathPrefix("/").Subrouter()
	api.Use(authn.Middleware)
	api.Use(enforcer.Middleware)

	RegisterStudentsEndpoints(srv, api)
	RegisterEmployeesEndpoints(srv, api)
	RegisterEnrollmentsEndpoints(srv, api)
	RegisterAttendanceEndpoints(srv, api)
}
