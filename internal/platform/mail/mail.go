// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

/*
Package mail provides outbound transactional email delivery.

It is consumed by the password-reset flow as a single "send" capability;
nothing in the auth core depends on how the message actually leaves the
system.

Implementations:

  - PostmarkSender: Production delivery via the Postmark transactional API.
  - LogSender: Development fallback that logs instead of sending.
*/
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrz1836/postmark"
)

// ErrDeliveryFailed wraps any provider-level send failure.
var ErrDeliveryFailed = errors.New("mail: delivery failed")

// Message is a plain-text transactional email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender is the delivery contract consumed by domain services.
type Sender interface {
	// Send delivers the message, bounded by the caller's context.
	Send(ctx context.Context, msg Message) error
}

// # Postmark

// PostmarkSender delivers mail through the Postmark transactional API.
type PostmarkSender struct {
	client *postmark.Client
	from   string
}

// NewPostmarkSender creates a Postmark-backed [Sender].
//
// Both tokens and the sender address are required so a half-configured
// deployment fails at startup instead of dropping mail at runtime.
func NewPostmarkSender(serverToken, accountToken, from string) (*PostmarkSender, error) {
	if serverToken == "" || accountToken == "" {
		return nil, errors.New("mail: postmark tokens are required")
	}
	if from == "" {
		return nil, errors.New("mail: sender address is required")
	}

	return &PostmarkSender{
		client: postmark.NewClient(serverToken, accountToken),
		from:   from,
	}, nil
}

// Send implements [Sender] using Postmark.
func (sender *PostmarkSender) Send(ctx context.Context, msg Message) error {
	response, err := sender.client.SendEmail(ctx, postmark.Email{
		From:     sender.from,
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if response.ErrorCode > 0 {
		return fmt.Errorf("%w: postmark error %d: %s", ErrDeliveryFailed, response.ErrorCode, response.Message)
	}
	return nil
}

// # Development Fallback

// LogSender logs messages instead of delivering them.
//
// Bodies carry one-time codes, so only the recipient and subject are logged.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only [Sender] for local development.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements [Sender] by logging the delivery.
func (sender *LogSender) Send(ctx context.Context, msg Message) error {
	sender.logger.InfoContext(ctx, "mail_send_skipped",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
