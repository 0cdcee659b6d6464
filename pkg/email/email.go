// Package email delivers password reset notifications.
package email

import (
	"context"
	"time"
)

// Notifier sends the messages of the password reset flow.
type Notifier interface {
	// SendPasswordResetEmail sends the reset token to the account owner.
	SendPasswordResetEmail(ctx context.Context, to, token string) error

	// SendPasswordChangedEmail confirms a completed reset.
	SendPasswordChangedEmail(ctx context.Context, to string) error
}

// Config holds delivery settings.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	// ResetURL is the page that consumes the token; the token is appended
	// as the "token" query parameter.
	ResetURL string
	Timeout  time.Duration
}
