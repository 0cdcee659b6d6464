package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// sender is the part of the Resend client used here.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier implements Notifier using Resend.
type ResendNotifier struct {
	emails sender
	config Config
	logger zerolog.Logger
}

func NewResendNotifier(cfg Config, logger zerolog.Logger) (*ResendNotifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("from email is required")
	}

	client := resend.NewClient(cfg.APIKey)
	return newResendNotifier(client.Emails, cfg, logger), nil
}

func newResendNotifier(emails sender, cfg Config, logger zerolog.Logger) *ResendNotifier {
	return &ResendNotifier{
		emails: emails,
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (n *ResendNotifier) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link, err := resetLink(n.config.ResetURL, token)
	if err != nil {
		return err
	}
	body, err := render(passwordResetTemplate, templateData{Email: to, Link: link, Token: token})
	if err != nil {
		return err
	}
	return n.send(ctx, to, "Reset your password", body)
}

func (n *ResendNotifier) SendPasswordChangedEmail(ctx context.Context, to string) error {
	body, err := render(passwordChangedTemplate, templateData{Email: to})
	if err != nil {
		return err
	}
	return n.send(ctx, to, "Your password was changed", body)
}

func (n *ResendNotifier) send(ctx context.Context, to, subject, html string) error {
	if n.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.config.Timeout)
		defer cancel()
	}

	sent, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", n.config.FromName, n.config.FromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send %q email: %w", subject, err)
	}

	n.logger.Info().Str("email", to).Str("message_id", sent.Id).Msg(subject)
	return nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
