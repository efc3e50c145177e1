package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := AuthenticateEvent{
		Subject:  "admin@one.example",
		TenantID: "platform-1",
		ClientIP: "192.168.1.1",
		Success:  true,
	}

	logger.Log(event)

	output := buf.String()

	// Check RFC5424 format components
	if !strings.Contains(output, "smartattend") {
		t.Error("Expected app name 'smartattend' in output")
	}
	if !strings.Contains(output, "authn") {
		t.Error("Expected message ID 'authn' in output")
	}
	if !strings.Contains(output, "admin@one.example") {
		t.Error("Expected subject in output")
	}
	if !strings.Contains(output, "192.168.1.1") {
		t.Error("Expected client IP in output")
	}
	if !strings.Contains(output, "successfully authenticated") {
		t.Error("Expected success message in output")
	}
}

func TestAuthenticateEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     AuthenticateEvent
		wantMsg   string
		wantSev   Severity
		wantFac   int
		wantMsgID string
	}{
		{
			name: "successful authentication",
			event: AuthenticateEvent{
				Subject:  "admin@one.example",
				TenantID: "platform-1",
				ClientIP: "10.0.0.1",
				Success:  true,
			},
			wantMsg:   "successfully authenticated",
			wantSev:   SeverityInfo,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
		{
			name: "failed authentication",
			event: AuthenticateEvent{
				Subject:      "admin@one.example",
				ClientIP:     "10.0.0.1",
				Success:      false,
				ErrorMessage: "token expired",
			},
			wantMsg:   "failed to authenticate",
			wantSev:   SeverityWarning,
			wantFac:   FacilityAuthPriv,
			wantMsgID: "authn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.event.Message(), tt.wantMsg) {
				t.Errorf("Message() = %q, want to contain %q", tt.event.Message(), tt.wantMsg)
			}
			if tt.event.Severity() != tt.wantSev {
				t.Errorf("Severity() = %v, want %v", tt.event.Severity(), tt.wantSev)
			}
			if tt.event.Facility() != tt.wantFac {
				t.Errorf("Facility() = %v, want %v", tt.event.Facility(), tt.wantFac)
			}
			if tt.event.MessageID() != tt.wantMsgID {
				t.Errorf("MessageID() = %v, want %v", tt.event.MessageID(), tt.wantMsgID)
			}
		})
	}
}

func TestViolationEvent(t *testing.T) {
	event := NewViolationEvent(
		"platform-1",
		"students",
		"s-42",
		"admin@one.example",
		"update",
		"10.0.0.1",
		"declared owner platform-2 does not match token",
	)

	if event.MessageID() != "violation" {
		t.Errorf("MessageID() = %v, want 'violation'", event.MessageID())
	}
	if event.Severity() != SeverityWarning {
		t.Errorf("Severity() = %v, want SeverityWarning", event.Severity())
	}
	if !strings.Contains(event.Message(), "denied update on students s-42") {
		t.Errorf("Message() = %q, want to contain denial", event.Message())
	}
	if !strings.Contains(event.Message(), "declared owner platform-2") {
		t.Errorf("Message() = %q, want to contain detail", event.Message())
	}
	if event.ID == uuid.Nil {
		t.Error("NewViolationEvent should assign a non-nil ID")
	}

	sd := event.StructuredData()
	if sd[SDIDAuth]["tenant"] != "platform-1" {
		t.Errorf("StructuredData auth.tenant = %v, want 'platform-1'", sd[SDIDAuth]["tenant"])
	}
	if sd[SDIDSubject]["kind"] != "students" {
		t.Errorf("StructuredData subject.kind = %v, want 'students'", sd[SDIDSubject]["kind"])
	}
	if sd[SDIDSubject]["resource"] != "s-42" {
		t.Errorf("StructuredData subject.resource = %v, want 's-42'", sd[SDIDSubject]["resource"])
	}
	if sd[SDIDAction]["result"] != "failure" {
		t.Errorf("StructuredData action.result = %v, want 'failure'", sd[SDIDAction]["result"])
	}
	if sd[SDIDAction]["event_id"] != event.ID.String() {
		t.Errorf("StructuredData action.event_id = %v, want %v", sd[SDIDAction]["event_id"], event.ID)
	}
	if sd[SDIDClient]["ip"] != "10.0.0.1" {
		t.Errorf("StructuredData client.ip = %v, want '10.0.0.1'", sd[SDIDClient]["ip"])
	}
}

func TestViolationEventWithoutResource(t *testing.T) {
	event := ViolationEvent{
		TenantID:  "platform-1",
		Kind:      "students",
		Principal: "admin@one.example",
		Operation: "list",
	}

	if strings.Contains(event.Message(), "  ") {
		t.Errorf("Message() = %q, unexpected double space", event.Message())
	}
	sd := event.StructuredData()
	if _, ok := sd[SDIDSubject]["resource"]; ok {
		t.Error("StructuredData should omit resource when empty")
	}
	if _, ok := sd[SDIDAction]["event_id"]; ok {
		t.Error("StructuredData should omit event_id when zero")
	}
}

func TestUnscopedQueryEvent(t *testing.T) {
	event := UnscopedQueryEvent{
		TenantID:  "platform-1",
		Principal: "admin@one.example",
		ClientIP:  "10.0.0.1",
		Reason:    "joins a second registered table",
	}

	if event.MessageID() != "unscoped-query" {
		t.Errorf("MessageID() = %v, want 'unscoped-query'", event.MessageID())
	}
	if event.Severity() != SeverityNotice {
		t.Errorf("Severity() = %v, want SeverityNotice", event.Severity())
	}
	if !strings.Contains(event.Message(), "could not be tenant-scoped") {
		t.Errorf("Message() = %q, want to contain rejection", event.Message())
	}
	sd := event.StructuredData()
	if sd[SDIDAction]["reason"] != "joins a second registered table" {
		t.Errorf("StructuredData action.reason = %v", sd[SDIDAction]["reason"])
	}
}

func TestAuditToggle(t *testing.T) {
	// Save original state
	originalEnabled := auditEnabled
	defer func() {
		auditEnabled = originalEnabled
	}()

	SetEnabled(false)
	if IsEnabled() {
		t.Error("Expected audit to be disabled")
	}

	SetEnabled(true)
	if !IsEnabled() {
		t.Error("Expected audit to be enabled")
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{`with]bracket`, `"with\]bracket"`},
		{`all"special\chars]`, `"all\"special\\chars\]"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := escapeSDValue(tt.input)
			if got != tt.want {
				t.Errorf("escapeSDValue(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
