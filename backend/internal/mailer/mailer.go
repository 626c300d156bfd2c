// Package mailer delivers the account verification email
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	apperrors "recipe-graph/backend/pkg/errors"
)

// Mailer sends a plain-text message to one recipient
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendEmailAPI is the part of the SES client SESMailer uses
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends through Amazon SES
type SESMailer struct {
	client sendEmailAPI
	from   string
	logger *zap.Logger
}

// NewSESMailer creates a mailer sending from the given verified address
func NewSESMailer(client sendEmailAPI, from string, log *zap.Logger) *SESMailer {
	return &SESMailer{client: client, from: from, logger: log}
}

// Send delivers one text email
func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		m.logger.Error("SES send failed", zap.String("to", to), zap.Error(err))
		return apperrors.NewUpstreamFailure("send email", err)
	}

	m.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer for development
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

// Send logs the message
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Email (not delivered)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

// VerificationMessage builds the subject and body of the signup email
func VerificationMessage(name, link string) (string, string) {
	greeting := "Hi"
	if name = strings.TrimSpace(name); name != "" {
		greeting = "Hi " + name
	}
	subject := "Verify your email"
	body := fmt.Sprintf("%s,\n\nConfirm your account by opening the link below:\n\n%s\n\nIf you did not sign up, ignore this email.", greeting, link)
	return subject, body
}
