package observability

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestBuildAuditEventIncludesRequiredFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/auth/verify/confirm", nil)
	req.Header.Set("X-Request-Id", "req-test-1")
	req.RemoteAddr = "127.0.0.1:12345"

	ev := BuildAuditEvent(req, AuditInput{
		EventName:   "credential.verify_email",
		ActorUserID: "7c1e9a52-3a51-4f0b-9d89-2f3c8c7f0a11",
		TargetType:  "credential",
		TargetID:    "7c1e9a52-3a51-4f0b-9d89-2f3c8c7f0a11",
		Action:      "verify_email",
		Outcome:     "success",
		Reason:      "pin_accepted",
	})

	if ev.EventVersion != 1 {
		t.Fatalf("expected event version 1, got %d", ev.EventVersion)
	}
	if ev.EventName == "" || ev.ActorUserID == "" || ev.ActorIP == "" || ev.TargetType == "" || ev.TargetID == "" || ev.Action == "" || ev.Outcome == "" || ev.Reason == "" || ev.RequestID == "" || ev.TS == "" {
		t.Fatalf("expected required fields present: %+v", ev)
	}
	if ev.ActorIP != "127.0.0.1" {
		t.Fatalf("expected port stripped from actor ip, got %q", ev.ActorIP)
	}
	if ev.RequestID != "req-test-1" {
		t.Fatalf("unexpected request id: %s", ev.RequestID)
	}
	if _, err := time.Parse(time.RFC3339, ev.TS); err != nil {
		t.Fatalf("expected RFC3339 ts, got %q err=%v", ev.TS, err)
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestBuildAuditEventDefaultsAnonymousActor(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/auth/password/forgot", nil)
	ev := BuildAuditEvent(req, AuditInput{EventName: "credential.password_forgot", Action: "forgot", Outcome: "accepted"})
	if ev.ActorUserID != "anonymous" {
		t.Fatalf("expected anonymous actor, got %q", ev.ActorUserID)
	}
}

func TestAuditEventValidateRejectsMissingEventName(t *testing.T) {
	ev := AuditEvent{
		EventVersion: 1,
		ActorUserID:  "42",
		ActorIP:      "127.0.0.1",
		TargetType:   "credential",
		TargetID:     "42",
		Action:       "reset_password",
		Outcome:      "success",
		Reason:       "ok",
		RequestID:    "req-1",
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
	if err := ev.Validate(); err == nil {
		t.Fatal("expected validation error for missing event_name")
	}
}
