package service

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogPinDispatcherWritesDeliveryRecord(t *testing.T) {
	var buf bytes.Buffer
	d := NewLogPinDispatcher(slog.New(slog.NewJSONHandler(&buf, nil)))
	n := PinNotification{Identity: "id-ana", Email: "ana@example.com", Pin: "a1b2c3d4", ExpiresAt: time.Now().Add(time.Minute)}

	if err := d.SendVerificationPin(t.Context(), n); err != nil {
		t.Fatalf("send verification: %v", err)
	}
	if err := d.SendPasswordResetPin(t.Context(), n); err != nil {
		t.Fatalf("send reset: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"email verification pin issued", "password reset pin issued", `"pin":"a1b2c3d4"`, `"identity":"id-ana"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output: %s", want, out)
		}
	}
}
