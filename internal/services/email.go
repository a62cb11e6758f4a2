package services

import (
  "context"
  "fmt"

  "github.com/sendgrid/sendgrid-go"
  "github.com/sendgrid/sendgrid-go/helpers/mail"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

type EmailService interface {
  SendEmail(ctx context.Context, toEmail string, subject string, plainText string, htmlContent string) error
}

type emailService struct {
  log           *logger.Logger
  client        *sendgrid.Client
  fromName      string
  fromEmail     string
}

func NewEmailService(log *logger.Logger, apiKey, fromEmail, fromName string) (EmailService, error) {
  serviceLog := log.With("service", "EmailService")
  if apiKey == "" {
    return nil, fmt.Errorf("missing SENDGRID_API_KEY environment variable")
  }
  if fromEmail == "" {
    serviceLog.Warn("SENDGRID_ALERT_EMAIL not set; using fallback alerts@medicare.local")
    fromEmail = "alerts@medicare.local"
  }
  return &emailService{
    log:        serviceLog,
    client:     sendgrid.NewSendClient(apiKey),
    fromName:   fromName,
    fromEmail:  fromEmail,
  }, nil
}

func (es *emailService) SendEmail(ctx context.Context, toEmail string, subject string, plainText string, htmlContent string) error {
  from := mail.NewEmail(es.fromName, es.fromEmail)
  to := mail.NewEmail("", toEmail)
  message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
  response, err := es.client.SendWithContext(ctx, message)
  if err != nil {
    es.log.Warn("Sendgrid email send failed", "error", err)
    return err
  }
  if response.StatusCode >= 300 {
    es.log.Warn("Sendgrid rejected email", "statusCode", response.StatusCode, "body", response.Body)
    return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
  }
  es.log.Info("Email sent", "to", toEmail, "statusCode", response.StatusCode)
  return nil
}
