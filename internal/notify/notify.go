// Package notify delivers ticket-created notifications over SES email and,
// for high-urgency tickets, SNS SMS. Delivery failures are logged and
// reported but never fail ticket creation.
package notify

import (
	"context"
	"fmt"
	"strings"

	commonaws "tagdesk/internal/common/aws"
	"tagdesk/internal/common/config"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"
	"tagdesk/internal/ticket"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier announces created tickets to the intake team.
type Notifier interface {
	TicketCreated(ctx context.Context, t *ticket.Ticket) error
}

// NopNotifier is used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) TicketCreated(context.Context, *ticket.Ticket) error { return nil }

type AWSNotifier struct {
	config    *config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewAWSNotifier(cfg *config.NotificationConfig, log logger.Logger) (*AWSNotifier, error) {
	ctx := context.Background()
	sesClient, err := commonaws.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("init SNS client: %w", err)
	}

	return &AWSNotifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
}

// NewWithClients wires pre-built SES/SNS clients; used by tests.
func NewWithClients(cfg *config.NotificationConfig, log logger.Logger, sesClient SESService, snsClient SNSService) *AWSNotifier {
	return &AWSNotifier{
		config:    cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (n *AWSNotifier) TicketCreated(ctx context.Context, t *ticket.Ticket) error {
	subject := fmt.Sprintf("New tag request: %s / %s", t.Client, t.PlatformName)
	body := renderTicketBody(t)

	emailSent := false
	smsSent := false

	if n.config.Email.Enabled && n.config.Email.ToEmail != "" {
		if err := n.sendEmail(ctx, n.config.Email.ToEmail, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error":    err,
				"ticketId": t.ID,
			})
			return fmt.Errorf("send email: %w", err)
		}
		emailSent = true
	}

	// SMS only for tickets at or above the configured priority threshold.
	threshold := models.PriorityWeight(models.Priority(n.config.SMS.PriorityThreshold))
	if n.config.SMS.Enabled && n.config.SMS.PhoneNumber != "" && models.PriorityWeight(t.Priority) >= threshold {
		if err := n.sendSMS(ctx, n.config.SMS.PhoneNumber, subject+" - "+body); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error":    err,
				"ticketId": t.ID,
			})
			return fmt.Errorf("send SMS: %w", err)
		}
		smsSent = true
	}

	n.logger.Info("ticket notification processed", map[string]interface{}{
		"ticketId":  t.ID,
		"emailSent": emailSent,
		"smsSent":   smsSent,
	})
	return nil
}

func (n *AWSNotifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.Email.FromEmail),
	})
	return err
}

func (n *AWSNotifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func renderTicketBody(t *ticket.Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticket %s\n", t.ID)
	fmt.Fprintf(&b, "Client: %s\n", t.Client)
	fmt.Fprintf(&b, "Platform: %s (%s)\n", t.PlatformName, t.PlatformID)
	fmt.Fprintf(&b, "Tag type: %s\n", t.TagType)
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "Session: %s\n", t.SessionID)
	return b.String()
}
