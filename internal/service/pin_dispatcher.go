package service

import (
	"context"
	"log/slog"
	"time"
)

//go:generate mockgen -destination=mock_pin_dispatcher_test.go -package=service github.com/reviewhub/credential-service/internal/service PinDispatcher

// PinNotification carries the plaintext pin to the out-of-band channel. It is
// the only place the plaintext exists after the hash is committed.
type PinNotification struct {
	Identity  string
	Email     string
	Pin       string
	ExpiresAt time.Time
	ActionURL string
}

type PinDispatcher interface {
	SendVerificationPin(ctx context.Context, notification PinNotification) error
	SendPasswordResetPin(ctx context.Context, notification PinNotification) error
}

// LogPinDispatcher writes pins to the application log. Configuration refuses
// it outside local environments.
type LogPinDispatcher struct {
	logger *slog.Logger
}

func NewLogPinDispatcher(logger *slog.Logger) *LogPinDispatcher {
	return &LogPinDispatcher{logger: logger}
}

func (n *LogPinDispatcher) SendVerificationPin(ctx context.Context, notification PinNotification) error {
	n.logger.InfoContext(ctx, "email verification pin issued",
		"identity", notification.Identity,
		"email", notification.Email,
		"expires_at", notification.ExpiresAt,
		"pin", notification.Pin,
		"action_url", notification.ActionURL,
	)
	return nil
}

func (n *LogPinDispatcher) SendPasswordResetPin(ctx context.Context, notification PinNotification) error {
	n.logger.InfoContext(ctx, "password reset pin issued",
		"identity", notification.Identity,
		"email", notification.Email,
		"expires_at", notification.ExpiresAt,
		"pin", notification.Pin,
		"action_url", notification.ActionURL,
	)
	return nil
}
