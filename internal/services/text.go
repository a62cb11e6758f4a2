package services

import (
  "context"
  "fmt"
  "sync/atomic"
  "time"

  twilio "github.com/twilio/twilio-go"
  openapi "github.com/twilio/twilio-go/rest/api/v2010"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/utils"
)

// TextService delivers a single SMS and returns the provider's message id.
type TextService interface {
  SendText(ctx context.Context, toNumber string, body string) (string, error)
}

type textService struct {
  log         *logger.Logger
  client      *twilio.RestClient
  from        string
}

func NewTextService(log *logger.Logger, timeout time.Duration) (TextService, error) {
  serviceLog := log.With("service", "TextService")
  accountSid := utils.GetEnv("TWILIO_ACCOUNT_SID", "", serviceLog)
  authToken := utils.GetEnv("TWILIO_AUTH_TOKEN", "", serviceLog)
  fromNumber := utils.GetEnv("TWILIO_FROM_NUMBER", "", serviceLog)

  if accountSid == "" || authToken == "" || fromNumber == "" {
    return nil, fmt.Errorf("missing Twilio env variables: TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER")
  }

  client := twilio.NewRestClientWithParams(twilio.ClientParams{
    Username: accountSid,
    Password: authToken,
  })
  if timeout > 0 {
    client.SetTimeout(timeout)
  }

  return &textService{
    log:        serviceLog,
    client:     client,
    from:       fromNumber,
  }, nil
}

func (ts *textService) SendText(ctx context.Context, toNumber string, body string) (string, error) {
  params := &openapi.CreateMessageParams{}
  params.SetTo(toNumber)
  params.SetFrom(ts.from)
  params.SetBody(body)

  resp, err := ts.client.Api.CreateMessage(params)
  if err != nil {
    ts.log.Warn("Failed to send Text via Twilio", "error", err)
    return "", err
  }
  sid := ""
  if resp.Sid != nil {
    sid = *resp.Sid
  }
  status := ""
  if resp.Status != nil {
    status = *resp.Status
  }
  ts.log.Info("Successfully sent Text via Twilio", "toNumber", toNumber, "sid", sid, "status", status)
  return sid, nil
}

// logTextService stands in for Twilio when it is not configured. Bodies are only
// logged at debug level since they carry OTP codes.
type logTextService struct {
  log     *logger.Logger
  counter atomic.Uint64
}

func NewLogTextService(log *logger.Logger) TextService {
  return &logTextService{log: log.With("service", "LogTextService")}
}

func (lts *logTextService) SendText(ctx context.Context, toNumber string, body string) (string, error) {
  id := fmt.Sprintf("LOCAL%010d", lts.counter.Add(1))
  lts.log.Info("Text not sent, Twilio is not configured", "toNumber", toNumber, "sid", id)
  lts.log.Debug("Text body", "toNumber", toNumber, "body", body)
  return id, nil
}
