// Package query provides a tenant-bound fluent builder for ad-hoc reads.
//
// Builder values are immutable: each chained call returns a copy, so a
// pre-built template can be shared freely. Execution requires WithTenant,
// which returns the distinct TenantQuery type; an unscoped execute is not
// expressible. Column names are validated against the resource descriptor
// as the chain is built, and caller values only ever reach SQL as bound
// parameters.
package query
