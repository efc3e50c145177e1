package audit

import (
	"fmt"

	"github.com/google/uuid"
)

// ViolationEvent records an attempted cross-tenant access: a request whose
// declared owner did not match the authenticated tenant, or a lookup that was
// denied because the resource belongs to another tenant.
type ViolationEvent struct {
	ID         uuid.UUID
	TenantID   string
	Kind       string
	ResourceID string
	Principal  string
	Operation  string
	ClientIP   string
	Detail     string
}

// NewViolationEvent assigns a fresh event ID so repeated violations from the
// same request remain distinguishable downstream.
func NewViolationEvent(tenantID, kind, resourceID, principal, operation, clientIP, detail string) ViolationEvent {
	return ViolationEvent{
		ID:         uuid.New(),
		TenantID:   tenantID,
		Kind:       kind,
		ResourceID: resourceID,
		Principal:  principal,
		Operation:  operation,
		ClientIP:   clientIP,
		Detail:     detail,
	}
}

func (e ViolationEvent) MessageID() string {
	return "violation"
}

func (e ViolationEvent) Message() string {
	msg := fmt.Sprintf("%s denied %s on %s", e.Principal, e.Operation, e.Kind)
	if e.ResourceID != "" {
		msg += " " + e.ResourceID
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e ViolationEvent) Severity() Severity {
	return SeverityWarning
}

func (e ViolationEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ViolationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"tenant": e.TenantID,
			"user":   e.Principal,
		},
		SDIDSubject: {
			"kind": e.Kind,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    "failure",
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.ResourceID != "" {
		sd[SDIDSubject]["resource"] = e.ResourceID
	}
	if e.ID != uuid.Nil {
		sd[SDIDAction]["event_id"] = e.ID.String()
	}
	return sd
}

// UnscopedQueryEvent records a raw query that was rejected because the
// ownership predicate could not be injected safely.
type UnscopedQueryEvent struct {
	TenantID  string
	Principal string
	ClientIP  string
	Reason    string
}

func (e UnscopedQueryEvent) MessageID() string {
	return "unscoped-query"
}

func (e UnscopedQueryEvent) Message() string {
	return fmt.Sprintf("%s submitted a query that could not be tenant-scoped: %s", e.Principal, e.Reason)
}

func (e UnscopedQueryEvent) Severity() Severity {
	return SeverityNotice
}

func (e UnscopedQueryEvent) Facility() int {
	return FacilityAuthPriv
}

func (e UnscopedQueryEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"tenant": e.TenantID,
			"user":   e.Principal,
		},
		SDIDAction: {
			"operation": "query",
			"result":    "failure",
			"reason":    e.Reason,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
}

// AuthenticateEvent records the outcome of token verification at the edge.
type AuthenticateEvent struct {
	Subject      string
	TenantID     string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e AuthenticateEvent) MessageID() string {
	return "authn"
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated for tenant %s", e.Subject, e.TenantID)
	}
	msg := fmt.Sprintf("%s failed to authenticate", e.Subject)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	result := "success"
	if !e.Success {
		result = "failure"
	}
	return map[string]map[string]string{
		SDIDAuth: {
			"tenant": e.TenantID,
			"user":   e.Subject,
		},
		SDIDAction: {
			"operation": "authenticate",
			"result":    result,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
}
