// Package audit provides audit logging for tenant-isolation decisions.
//
// This package implements structured audit logging for security-relevant
// operations: cross-tenant access attempts, rejected raw queries, and
// authentication outcomes.
//
// Events are emitted in RFC5424 syslog format and optionally persisted to a
// database. The Sink delivers events asynchronously so the request path never
// blocks on audit I/O.
package audit
