package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"tagdesk/internal/common/config"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"
	"tagdesk/internal/ticket"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         int
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls++
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       int
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls++
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func testNotificationConfig(emailEnabled, smsEnabled bool, threshold string) *config.NotificationConfig {
	cfg := &config.NotificationConfig{}
	cfg.Email.Enabled = emailEnabled
	cfg.Email.FromEmail = "tagdesk@example.com"
	cfg.Email.ToEmail = "adops@example.com"
	cfg.SMS.Enabled = smsEnabled
	cfg.SMS.PhoneNumber = "+15550001111"
	cfg.SMS.PriorityThreshold = threshold
	cfg.AWS.Region = "us-east-1"
	return cfg
}

func testTicket(priority models.Priority) *ticket.Ticket {
	return &ticket.Ticket{
		ID:           "ticket-001",
		SessionID:    "session-001",
		Client:       "Nike",
		PlatformID:   "dv360",
		PlatformName: "Google DV360",
		TagType:      models.TagTypeTracker,
		Priority:     priority,
		CreatedAt:    time.Now().UTC(),
	}
}

func okSES() *MockSESService {
	return &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}
}

func okSNS() *MockSNSService {
	return &MockSNSService{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{}, nil
		},
	}
}

// ==========================
// Tests
// ==========================

func TestTicketCreated_EmailOnly(t *testing.T) {
	sesMock := okSES()
	snsMock := okSNS()
	n := NewWithClients(testNotificationConfig(true, false, "High"), logger.NewNoOpLogger(), sesMock, snsMock)

	err := n.TicketCreated(context.Background(), testTicket(models.PriorityHigh))
	require.NoError(t, err)
	assert.Equal(t, 1, sesMock.calls)
	assert.Equal(t, 0, snsMock.calls, "SMS disabled")
}

func TestTicketCreated_SMSGatedByPriorityThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold string
		priority  models.Priority
		wantSMS   bool
	}{
		{"high ticket at high threshold", "High", models.PriorityHigh, true},
		{"medium ticket at high threshold", "High", models.PriorityMedium, false},
		{"low ticket at high threshold", "High", models.PriorityLow, false},
		{"medium ticket at medium threshold", "Medium", models.PriorityMedium, true},
		{"low ticket at medium threshold", "Medium", models.PriorityLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sesMock := okSES()
			snsMock := okSNS()
			n := NewWithClients(testNotificationConfig(true, true, tt.threshold), logger.NewNoOpLogger(), sesMock, snsMock)

			err := n.TicketCreated(context.Background(), testTicket(tt.priority))
			require.NoError(t, err)

			wantCalls := 0
			if tt.wantSMS {
				wantCalls = 1
			}
			assert.Equal(t, wantCalls, snsMock.calls)
		})
	}
}

func TestTicketCreated_EmailContent(t *testing.T) {
	var captured *ses.SendEmailInput
	sesMock := &MockSESService{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}
	n := NewWithClients(testNotificationConfig(true, false, "High"), logger.NewNoOpLogger(), sesMock, okSNS())

	require.NoError(t, n.TicketCreated(context.Background(), testTicket(models.PriorityHigh)))
	require.NotNil(t, captured)

	assert.Equal(t, "tagdesk@example.com", *captured.Source)
	assert.Equal(t, []string{"adops@example.com"}, captured.Destination.ToAddresses)
	assert.Contains(t, *captured.Message.Subject.Data, "Nike")
	assert.Contains(t, *captured.Message.Body.Text.Data, "Google DV360")
	assert.Contains(t, *captured.Message.Body.Text.Data, "ticket-001")
}

func TestTicketCreated_EmailFailure(t *testing.T) {
	sesMock := &MockSESService{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses throttled")
		},
	}
	n := NewWithClients(testNotificationConfig(true, false, "High"), logger.NewNoOpLogger(), sesMock, okSNS())

	err := n.TicketCreated(context.Background(), testTicket(models.PriorityHigh))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send email")
}

func TestTicketCreated_NothingEnabled(t *testing.T) {
	sesMock := okSES()
	snsMock := okSNS()
	n := NewWithClients(testNotificationConfig(false, false, "High"), logger.NewNoOpLogger(), sesMock, snsMock)

	require.NoError(t, n.TicketCreated(context.Background(), testTicket(models.PriorityHigh)))
	assert.Equal(t, 0, sesMock.calls)
	assert.Equal(t, 0, snsMock.calls)
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, NopNotifier{}.TicketCreated(context.Background(), testTicket(models.PriorityLow)))
}
