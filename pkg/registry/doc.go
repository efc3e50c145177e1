// Package registry defines the closed set of tenant-scoped resources.
//
// Each Kind resolves to a Descriptor naming its table, its owner column and
// the allowlisted filter/sort/write columns. Unknown kinds and unknown
// columns are rejected at this boundary, before any SQL is constructed.
package registry
