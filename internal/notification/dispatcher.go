// Package notification renders message templates and sends them through the SMS gateway.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	dErrors "gymdesk/pkg/domain-errors"
	"gymdesk/pkg/phone"
	"gymdesk/pkg/requestcontext"
)

// MaxMessageLength is the gateway's limit in characters.
const MaxMessageLength = 3000

// Sender delivers a rendered message to normalized recipients.
type Sender interface {
	Send(ctx context.Context, recipients []string, message string) (*SendResult, error)
}

// Dispatcher turns (phone, template, data) into one gateway call.
//
// Failures come back as domain errors:
//   - invalid_recipient: the phone did not normalize; nothing was sent
//   - message_too_long: the rendered message is over MaxMessageLength; nothing was sent
//   - notification_failed: the gateway refused the message or could not be reached
type Dispatcher struct {
	sender     Sender
	loginURL   string
	logger     *slog.Logger
	httpClient *http.Client
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithSender replaces the HTTP gateway client.
func WithSender(sender Sender) Option {
	return func(d *Dispatcher) {
		d.sender = sender
	}
}

// WithHTTPClient sets the client the default gateway client uses.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = client
	}
}

func New(cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{loginURL: cfg.LoginURL}
	for _, opt := range opts {
		opt(d)
	}
	if d.sender == nil {
		d.sender = NewGatewayClient(cfg, d.httpClient)
	}
	return d
}

// Send normalizes rawPhone, renders kind with data, and sends it. It never retries.
func (d *Dispatcher) Send(ctx context.Context, rawPhone string, kind Kind, data any) error {
	recipient, ok := phone.Normalize(rawPhone)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidRecipient,
			fmt.Sprintf("%q is not a valid mobile number", rawPhone))
	}

	message, err := render(kind, data, d.loginURL)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "cannot build "+string(kind)+" message")
	}
	if n := utf8.RuneCountInString(message); n > MaxMessageLength {
		return dErrors.New(dErrors.CodeMessageTooLong,
			fmt.Sprintf("message is %d characters; the limit is %d", n, MaxMessageLength))
	}

	result, err := d.sender.Send(ctx, []string{recipient}, message)
	if err != nil {
		d.logWarn(ctx, "sms dispatch failed",
			"kind", kind,
			"recipient", mask(recipient),
			"error", err,
		)
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			if gwErr.StatusCode == 0 {
				return dErrors.Wrap(err, dErrors.CodeNotificationFailed, "SMS gateway could not be reached")
			}
			return dErrors.Wrap(err, dErrors.CodeNotificationFailed, "SMS gateway rejected the message: "+gwErr.ProviderMessage)
		}
		return dErrors.Wrap(err, dErrors.CodeNotificationFailed, "failed to send SMS")
	}

	d.logInfo(ctx, "sms dispatched",
		"kind", kind,
		"recipient", mask(recipient),
		"message_id", result.MessageID,
	)
	return nil
}

func (d *Dispatcher) logInfo(ctx context.Context, msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.InfoContext(ctx, msg, append(args, "request_id", requestcontext.RequestID(ctx))...)
}

func (d *Dispatcher) logWarn(ctx context.Context, msg string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.WarnContext(ctx, msg, append(args, "request_id", requestcontext.RequestID(ctx))...)
}

// mask keeps the country code and last four digits.
func mask(normalized string) string {
	if len(normalized) < 6 {
		return "****"
	}
	return normalized[:2] + "*****" + normalized[len(normalized)-4:]
}
