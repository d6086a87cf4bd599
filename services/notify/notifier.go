package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"settlo-leads/api/pkg/clients/email"
	"settlo-leads/api/services/storage"
)

var tracer = otel.Tracer("settlo-leads.services.notify")

// NotificationError describes a delivery that did not go through. It is
// logged and counted, never surfaced to HTTP callers.
type NotificationError struct {
	Provider  string
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify: %s delivery to %q failed: %v", e.Provider, e.Recipient, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Config identifies the sender and the default recipient list.
type Config struct {
	Provider  string
	From      string
	FromName  string
	Recipient string
}

// Notifier formats leads and hands them to a mail transport.
type Notifier struct {
	client    email.Client
	formatter *Formatter
	cfg       Config
	metrics   *Metrics
}

func NewNotifier(client email.Client, formatter *Formatter, cfg Config, metrics *Metrics) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("notify: email client is required")
	}
	if formatter == nil {
		formatter = NewFormatter(DefaultBrand, time.UTC)
	}
	if cfg.Provider == "" {
		cfg.Provider = "unknown"
	}
	return &Notifier{client: client, formatter: formatter, cfg: cfg, metrics: metrics}, nil
}

// Send delivers one message and reports whether it was accepted. Failures
// are logged; no error escapes and nothing is retried.
func (n *Notifier) Send(ctx context.Context, subject, text, html, recipient string) bool {
	ctx, span := tracer.Start(ctx, "notify.send", trace.WithAttributes(
		attribute.String("notify.provider", n.cfg.Provider),
	))
	defer span.End()

	start := time.Now()
	res, err := n.client.Send(ctx, email.Message{
		To:       recipient,
		From:     n.cfg.From,
		FromName: n.cfg.FromName,
		Subject:  subject,
		Body:     text,
		HTML:     html,
	})
	if err == nil && (res == nil || !res.Sent) {
		err = errors.New("message not accepted")
	}
	n.metrics.observe(n.cfg.Provider, err == nil, time.Since(start))

	if err != nil {
		nerr := &NotificationError{Provider: n.cfg.Provider, Recipient: recipient, Err: err}
		span.RecordError(nerr)
		span.SetStatus(codes.Error, "delivery failed")
		slog.Warn("lead notification failed", "provider", n.cfg.Provider, "error", nerr)
		return false
	}

	span.SetAttributes(attribute.String("notify.message_id", res.MessageID))
	slog.Info("lead notification sent", "provider", n.cfg.Provider, "messageId", res.MessageID, "status", res.DeliveryStatus)
	return true
}

// NotifyLead formats lead and sends it to the configured recipient.
func (n *Notifier) NotifyLead(ctx context.Context, lead storage.Lead) bool {
	msg, err := n.formatter.Format(lead)
	if err != nil {
		slog.Error("failed to format lead notification", "id", lead.ID, "error", err)
		n.metrics.observe(n.cfg.Provider, false, 0)
		return false
	}
	return n.Send(ctx, msg.Subject, msg.Text, msg.HTML, n.cfg.Recipient)
}
