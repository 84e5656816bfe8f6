// internal/notify/ses_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"ats-pipeline/internal/common/config"
	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

type mockSESClient struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNSClient struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func sesTestConfig(emailEnabled, smsEnabled bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = emailEnabled
	cfg.Email.FromEmail = "noreply@example.com"
	cfg.SMS.Enabled = smsEnabled
	cfg.SMS.PriorityThreshold = models.PriorityHigh
	return cfg
}

func TestSESSender_EmailOnly(t *testing.T) {
	sesClient := &mockSESClient{}
	snsClient := &mockSNSClient{}
	s := &SESSender{
		cfg:       sesTestConfig(true, true),
		logger:    logger.NewTestLogger(t),
		sesClient: sesClient,
		snsClient: snsClient,
	}

	job := models.NotificationJob{
		RecipientID: "candidate-001",
		Subject:     "Application status updated",
		Body:        "Your application moved forward.",
		Priority:    models.PriorityNormal,
	}

	err := s.Send(context.Background(), "a@example.com", "+15550001", job)

	assert.NoError(t, err)
	assert.Len(t, sesClient.inputs, 1)
	assert.Equal(t, "a@example.com", sesClient.inputs[0].Destination.ToAddresses[0])
	assert.Equal(t, "noreply@example.com", *sesClient.inputs[0].Source)
	// Normal priority stays below the SMS threshold.
	assert.Empty(t, snsClient.inputs)
}

func TestSESSender_HighPriorityAlsoSendsSMS(t *testing.T) {
	sesClient := &mockSESClient{}
	snsClient := &mockSNSClient{}
	s := &SESSender{
		cfg:       sesTestConfig(true, true),
		logger:    logger.NewTestLogger(t),
		sesClient: sesClient,
		snsClient: snsClient,
	}

	job := models.NotificationJob{
		RecipientID: "candidate-001",
		Subject:     "Congratulations, you are hired",
		Body:        "Your application reached Hired.",
		Priority:    models.PriorityHigh,
	}

	err := s.Send(context.Background(), "a@example.com", "+15550001", job)

	assert.NoError(t, err)
	assert.Len(t, sesClient.inputs, 1)
	assert.Len(t, snsClient.inputs, 1)
	assert.Equal(t, "+15550001", *snsClient.inputs[0].PhoneNumber)
}

func TestSESSender_NoPhoneSkipsSMS(t *testing.T) {
	sesClient := &mockSESClient{}
	snsClient := &mockSNSClient{}
	s := &SESSender{
		cfg:       sesTestConfig(true, true),
		logger:    logger.NewTestLogger(t),
		sesClient: sesClient,
		snsClient: snsClient,
	}

	job := models.NotificationJob{RecipientID: "candidate-001", Priority: models.PriorityHigh}

	err := s.Send(context.Background(), "a@example.com", "", job)

	assert.NoError(t, err)
	assert.Len(t, sesClient.inputs, 1)
	assert.Empty(t, snsClient.inputs)
}

func TestSESSender_EmailFailure(t *testing.T) {
	sesClient := &mockSESClient{err: errors.New("throttled")}
	s := &SESSender{
		cfg:       sesTestConfig(true, false),
		logger:    logger.NewTestLogger(t),
		sesClient: sesClient,
		snsClient: &mockSNSClient{},
	}

	job := models.NotificationJob{RecipientID: "candidate-001", Subject: "x", Body: "y"}

	err := s.Send(context.Background(), "a@example.com", "", job)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email send")
}

func TestSESSender_AllChannelsDisabled(t *testing.T) {
	sesClient := &mockSESClient{}
	snsClient := &mockSNSClient{}
	s := &SESSender{
		cfg:       sesTestConfig(false, false),
		logger:    logger.NewTestLogger(t),
		sesClient: sesClient,
		snsClient: snsClient,
	}

	err := s.Send(context.Background(), "a@example.com", "+15550001", models.NotificationJob{})

	assert.NoError(t, err)
	assert.Empty(t, sesClient.inputs)
	assert.Empty(t, snsClient.inputs)
}
