// Package config provides configuration management for the isolation service.
//
// Configuration is loaded from an optional YAML file and overridden by
// environment variables. The source of every attribute is tracked so the
// CLI can report where a value came from.
//
// # Key Configuration Options
//
//   - SMARTATTEND_CONFIG_PATH: Directory containing smartattend.yml
//   - SMARTATTEND_LIST_LIMIT_DEFAULT / SMARTATTEND_LIST_LIMIT_MAX: Paging bounds
//   - SMARTATTEND_AUDIT_QUEUE_SIZE: Async audit sink queue size
//   - SMARTATTEND_TRUSTED_PROXIES: CIDR ranges allowed to set X-Forwarded-For
//   - DATABASE_URL: Database connection
//   - PORT: Server listen port
package config
