// Package server provides the HTTP server for the SmartAttend isolation API.
//
// This package implements the core HTTP server that fronts the tenant
// isolation layer. It uses gorilla/mux for routing and provides middleware
// for authentication and tenant enforcement.
//
// # Server Setup
//
//	srv := server.NewServer(db, store, registry, sink, cfg, log, tokenKey, host, port)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Store: tenant-scoped data access
//   - Registry: resource descriptors and column allowlists
//   - Sink: async audit delivery
//   - Router: HTTP request router
//   - DB: database connection
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers the tenant-scoped API including:
//
//   - /students - student CRUD and bulk import
//   - /employees - employee listing
//   - /enrollments - ownership-checked compound writes
//   - /attendance/summary - scoped reporting queries
//   - /status - liveness and readiness
package server
