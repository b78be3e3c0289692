package auth

import (
	"context"

	"github.com/rs/zerolog/log"
)

type NotificationKind string

const (
	NotifyTwoFactorCode NotificationKind = "two_factor_code"
	NotifyPasswordReset NotificationKind = "password_reset"
)

// Notification is an out-of-band message for a user (code or reset link)
type Notification struct {
	Kind   NotificationKind
	Email  string
	Secret string
}

// CodeSender delivers one-time codes and reset tokens
type CodeSender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log. Only suitable for development.
type LogSender struct{}

func (LogSender) Send(_ context.Context, n Notification) error {
	log.Info().
		Str("kind", string(n.Kind)).
		Str("email", n.Email).
		Str("secret", n.Secret).
		Msg("notification")
	return nil
}
