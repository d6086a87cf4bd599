package email

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrNoRecipients is returned when a message has no usable To address.
var ErrNoRecipients = errors.New("email: no recipients")

// Message represents an email to be sent. To may hold several
// comma-separated addresses.
type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	Body     string // plain text
	HTML     string // optional HTML alternative
}

// Recipients splits To into trimmed, non-empty addresses.
func (m Message) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(m.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Result holds the outcome of a send attempt.
type Result struct {
	DeliveryStatus string
	Sent           bool
	MessageID      string
}

// Client defines the interface for sending emails.
// Implementations can be swapped between a stub (for dev/testing)
// and a real provider (SMTP, SendGrid, SES).
type Client interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// StubClient simulates sending emails by logging them.
type StubClient struct {
	FromAddress string
}

// NewStubClient creates an email client that logs instead of sending.
func NewStubClient(fromAddress string) *StubClient {
	return &StubClient{FromAddress: fromAddress}
}

func (c *StubClient) Send(_ context.Context, msg Message) (*Result, error) {
	if len(msg.Recipients()) == 0 {
		return nil, ErrNoRecipients
	}
	from := msg.From
	if from == "" {
		from = c.FromAddress
	}
	slog.Info("sending email (stub)", "to", msg.To, "from", from, "subject", msg.Subject)
	return &Result{
		DeliveryStatus: "logged",
		Sent:           true,
	}, nil
}
