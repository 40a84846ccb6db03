package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidConfig     = errors.New("invalid email config")
	ErrInvalidParams     = errors.New("invalid email params")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Sender sends a single transactional email.
type Sender interface {
	Send(ctx context.Context, params SendParams) error
}

// SendParams carries one outbound message. ReplyTo is set per message
// because reply addresses are single-use tokens; Tag classifies the
// message for audit.
type SendParams struct {
	To       string
	Subject  string
	BodyHTML string
	ReplyTo  string
	Tag      string
}

func (p SendParams) Validate() error {
	if p.To == "" || !emailRegex.MatchString(p.To) {
		return fmt.Errorf("%w: recipient %q", ErrInvalidParams, p.To)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidParams)
	}
	return nil
}
