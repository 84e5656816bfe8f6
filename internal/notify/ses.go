// internal/notify/ses.go
package notify

import (
	"context"
	"fmt"

	"ats-pipeline/internal/common/config"
	"ats-pipeline/internal/common/logger"
	"ats-pipeline/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Interfaces for mocking the AWS clients in tests.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESSender delivers notifications over AWS: email via SES for every job,
// SMS via SNS when the job priority meets the configured threshold and a
// phone number is known.
type SESSender struct {
	cfg       config.NotificationConfig
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewSESSender(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SESSender{
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"sender": "ses"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

func (s *SESSender) Send(ctx context.Context, email, phone string, job models.NotificationJob) error {
	if s.cfg.Email.Enabled && email != "" {
		if err := s.sendEmail(ctx, email, job.Subject, job.Body); err != nil {
			return fmt.Errorf("email send: %w", err)
		}
	}

	if s.cfg.SMS.Enabled && phone != "" && job.Priority == s.cfg.SMS.PriorityThreshold {
		if err := s.sendSMS(ctx, phone, job.Body); err != nil {
			return fmt.Errorf("SMS send: %w", err)
		}
	}

	return nil
}

func (s *SESSender) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.cfg.Email.FromEmail),
	})
	return err
}

func (s *SESSender) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
