package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the relay and account used for SMTP delivery.
// The defaults target Gmail with an app password over STARTTLS.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPClient delivers mail through an authenticated SMTP relay.
// A fresh connection is dialed per message so the client is safe for
// concurrent use.
type SMTPClient struct {
	cfg  SMTPConfig
	opts []mail.Option
}

// NewSMTPClient validates cfg and prepares the connection options.
func NewSMTPClient(cfg SMTPConfig) (*SMTPClient, error) {
	if cfg.Host == "" {
		return nil, errors.New("email: smtp host is required")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("email: smtp username and password are required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &SMTPClient{
		cfg: cfg,
		opts: []mail.Option{
			mail.WithPort(cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTimeout(cfg.Timeout),
		},
	}, nil
}

// Send dials the relay, delivers msg and closes the connection.
func (c *SMTPClient) Send(ctx context.Context, msg Message) (*Result, error) {
	if msg.From == "" {
		msg.From = c.cfg.Username
	}
	m, err := buildSMTPMessage(msg)
	if err != nil {
		return nil, err
	}

	client, err := mail.NewClient(c.cfg.Host, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("email: smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, fmt.Errorf("email: smtp send: %w", err)
	}

	return &Result{DeliveryStatus: "sent", Sent: true}, nil
}

// buildSMTPMessage converts msg into a multipart go-mail message with a
// plain-text part and an optional HTML alternative.
func buildSMTPMessage(msg Message) (*mail.Msg, error) {
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	m := mail.NewMsg()
	var err error
	if msg.FromName != "" {
		err = m.FromFormat(msg.FromName, msg.From)
	} else {
		err = m.From(msg.From)
	}
	if err != nil {
		return nil, fmt.Errorf("email: invalid from address %q: %w", msg.From, err)
	}
	if err := m.To(recipients...); err != nil {
		return nil, fmt.Errorf("email: invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
