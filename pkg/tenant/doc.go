// Package tenant carries the per-request tenant identity.
//
// A tenant.Context is constructed by the enforcement middleware from the
// authenticated principal and threaded explicitly through every storage
// call. Handlers retrieve it with tenant.Get and must fail closed when it
// is absent.
package tenant
