package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SendEmailAPI is the slice of the SES v2 client used here.
// Satisfied by *sesv2.Client in production and fakes in tests.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESConfig controls how the SES v2 client is built.
type SESConfig struct {
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	EndpointOverride string // e.g. LocalStack
}

// SESClient sends emails via AWS SES v2.
type SESClient struct {
	api SendEmailAPI
}

// NewSESClient wraps an existing SES API client.
func NewSESClient(api SendEmailAPI) (*SESClient, error) {
	if api == nil {
		return nil, errors.New("email: ses client is required")
	}
	return &SESClient{api: api}, nil
}

// LoadSESClient builds an SES client from the default AWS credential chain,
// preferring static keys when both are provided.
func LoadSESClient(ctx context.Context, cfg SESConfig) (*SESClient, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if strings.TrimSpace(cfg.AccessKeyID) != "" && strings.TrimSpace(cfg.SecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("email: load aws config: %w", err)
	}

	client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
		if cfg.EndpointOverride != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointOverride)
		}
	})
	return NewSESClient(client)
}

func (c *SESClient) Send(ctx context.Context, msg Message) (*Result, error) {
	recipients := msg.Recipients()
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	input := buildSESInput(msg, recipients)
	output, err := c.api.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("email: ses send failed: %w", err)
	}

	return &Result{
		DeliveryStatus: "accepted",
		Sent:           true,
		MessageID:      aws.ToString(output.MessageId),
	}, nil
}

func buildSESInput(msg Message, recipients []string) *sesv2.SendEmailInput {
	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	body := &types.Body{
		Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: recipients},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	}
}

var (
	_ Client = (*StubClient)(nil)
	_ Client = (*SMTPClient)(nil)
	_ Client = (*SendGridClient)(nil)
	_ Client = (*SESClient)(nil)
)
