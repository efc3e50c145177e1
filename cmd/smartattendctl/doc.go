// Package main provides the smartattendctl CLI for the SmartAttend tenant
// isolation service.
//
// SmartAttend is a multi-tenant attendance platform for schools and
// corporate offices. Every tenant's rows live in shared tables keyed by a
// platform_id owner column; this service guarantees that no request ever
// reads or writes another tenant's rows.
//
// # Quick Start
//
//	# Run database migrations
//	smartattendctl db migrate
//
//	# Start the server
//	smartattendctl server
//
//	# Issue a tenant token for testing
//	smartattendctl token issue --tenant platform-1 --subject admin@one.example
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - SMARTATTEND_TOKEN_KEY: HMAC key for bearer token verification
//   - SMARTATTEND_CONFIG_PATH: Directory containing smartattend.yml
//   - SMARTATTEND_LOG_LEVEL: Log level (debug enables SQL logging)
//   - PORT: Server port (default: 8000)
package main
