package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"qnotify/config"
	"qnotify/pkg/metrics"
)

type postmarkSender struct {
	client *postmark.Client
	sender string
}

// NewPostmarkSender creates a Postmark-backed sender. All fields are
// required so a misconfigured service fails at startup, not on the
// first notification.
func NewPostmarkSender(cfg config.EmailConfig) (Sender, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: postmark_server_token is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark_account_token is required", ErrInvalidConfig)
	}
	if cfg.SenderAddress == "" || !emailRegex.MatchString(cfg.SenderAddress) {
		return nil, fmt.Errorf("%w: sender_address must be a valid email address", ErrInvalidConfig)
	}

	return &postmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		sender: cfg.SenderAddress,
	}, nil
}

func (s *postmarkSender) Send(ctx context.Context, params SendParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.sender,
		ReplyTo:  params.ReplyTo,
		To:       params.To,
		Subject:  params.Subject,
		Tag:      params.Tag,
		HTMLBody: params.BodyHTML,
	})
	if err != nil {
		metrics.IncrementEmailSent("failed")
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		metrics.IncrementEmailSent("failed")
		return errors.Join(
			ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}

	metrics.IncrementEmailSent("success")
	return nil
}
