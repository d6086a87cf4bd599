package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridConfig holds configuration for the SendGrid v3 mail API.
type SendGridConfig struct {
	APIKey string
	// BaseURL overrides https://api.sendgrid.com (tests, EU data residency).
	BaseURL string
}

// SendGridClient sends emails via the SendGrid API.
type SendGridClient struct {
	client *sendgrid.Client
}

// NewSendGridClient creates a SendGrid-backed Client.
func NewSendGridClient(cfg SendGridConfig) (*SendGridClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("email: sendgrid api key is required")
	}
	client := sendgrid.NewSendClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		client.Request.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v3/mail/send"
	}
	return &SendGridClient{client: client}, nil
}

func (c *SendGridClient) Send(ctx context.Context, msg Message) (*Result, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("email: sendgrid client not configured")
	}
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(msg.FromName, msg.From))
	message.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, addr := range recipients {
		p.AddTos(sgmail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)

	message.AddContent(sgmail.NewContent("text/plain", msg.Body))
	if msg.HTML != "" {
		message.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	response, err := c.client.SendWithContext(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("email: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("email: sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	var messageID string
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
		messageID = ids[0]
	}
	return &Result{DeliveryStatus: "accepted", Sent: true, MessageID: messageID}, nil
}
