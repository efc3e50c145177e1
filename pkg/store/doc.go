// Package store defines the tenant isolation storage contract.
//
// The IsolationStore interface is the only way handlers touch tenant-scoped
// tables. Implementations live in subpackages (store/gorm). The error kinds
// declared here form the taxonomy handlers translate to HTTP status codes:
//
//	ErrAuthenticationRequired -> 401
//	ErrAccessDenied           -> 403
//	ErrNotFoundOrForbidden    -> 404
//	ValidationError           -> 400
//	ErrUnscopableQuery        -> 400
//	InternalError             -> 500
package store
