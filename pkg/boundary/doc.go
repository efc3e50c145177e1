// Package boundary verifies resource ownership for multi-resource flows.
//
// Handlers that touch several resources before a compound write construct a
// Checker once per request and route every lookup through it; any resource
// the tenant does not own stops the flow with a stable access-denial error.
package boundary
