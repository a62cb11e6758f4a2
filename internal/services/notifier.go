package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

// DeliveryResult is the outcome of one send. Notifier methods never return errors;
// failures are reported here.
type DeliveryResult struct {
  Success           bool
  ProviderMessageID *string
  Error             *string
}

func (dr DeliveryResult) ErrorMessage() string {
  if dr.Error == nil {
    return ""
  }
  return *dr.Error
}

type Notifier interface {
  SendOtp(ctx context.Context, phoneNumber, code string) DeliveryResult
  SendAppointmentConfirmation(ctx context.Context, phoneNumber, doctorName string, scheduledAt time.Time, appointmentID uuid.UUID) DeliveryResult
  SendNotification(ctx context.Context, phoneNumber, text string) DeliveryResult
}

type NotifierConfig struct {
  ClinicName      string
  CountryCode     string
  OtpTTLMinutes   int
  Timeout         time.Duration
}

type smsNotifier struct {
  log              *logger.Logger
  textService      TextService
  notificationRepo repos.NotificationRepo
  cfg              NotifierConfig
}

// NewSMSNotifier sends through textService and, when notificationRepo is not nil,
// records every attempt.
func NewSMSNotifier(log *logger.Logger, textService TextService, notificationRepo repos.NotificationRepo, cfg NotifierConfig) Notifier {
  if cfg.ClinicName == "" {
    cfg.ClinicName = "MediCare Pharmacy"
  }
  if cfg.CountryCode == "" {
    cfg.CountryCode = "91"
  }
  if cfg.OtpTTLMinutes <= 0 {
    cfg.OtpTTLMinutes = 10
  }
  return &smsNotifier{
    log:              log.With("service", "Notifier"),
    textService:      textService,
    notificationRepo: notificationRepo,
    cfg:              cfg,
  }
}

func (n *smsNotifier) SendOtp(ctx context.Context, phoneNumber, code string) DeliveryResult {
  if code == "" {
    return failed("OTP code is required")
  }
  body := fmt.Sprintf("Your OTP for %s is: %s\nValid for %d minutes.", n.cfg.ClinicName, code, n.cfg.OtpTTLMinutes)
  return n.deliver(ctx, types.NotificationKindOtp, phoneNumber, body, nil)
}

func (n *smsNotifier) SendAppointmentConfirmation(ctx context.Context, phoneNumber, doctorName string, scheduledAt time.Time, appointmentID uuid.UUID) DeliveryResult {
  body := fmt.Sprintf(
    "Appointment Confirmed!\nDoctor: %s\nDate & Time: %s\nRef ID: %s\nThank you for booking with %s!",
    doctorName,
    scheduledAt.Format("2006-01-02 15:04"),
    appointmentID.String(),
    n.cfg.ClinicName,
  )
  meta := map[string]interface{}{"appointment_id": appointmentID.String()}
  return n.deliver(ctx, types.NotificationKindAppointmentConfirmation, phoneNumber, body, meta)
}

func (n *smsNotifier) SendNotification(ctx context.Context, phoneNumber, text string) DeliveryResult {
  if text == "" {
    return failed("message text is required")
  }
  return n.deliver(ctx, types.NotificationKindGeneric, phoneNumber, text, nil)
}

func (n *smsNotifier) deliver(ctx context.Context, kind types.NotificationKind, phoneNumber, body string, meta map[string]interface{}) DeliveryResult {
  to := normalization.ToInternational(phoneNumber, n.cfg.CountryCode)
  log := n.log.With("kind", kind, "phoneNumber", phoneNumber)

  result := n.send(ctx, to, body)
  if result.Success {
    log.Info("SMS delivered", "sid", *result.ProviderMessageID)
  } else {
    log.Warn("SMS delivery failed", "error", result.ErrorMessage())
  }
  n.record(ctx, kind, phoneNumber, result, meta)
  return result
}

// send bounds the provider call by the configured timeout even if the provider
// client ignores ctx.
func (n *smsNotifier) send(ctx context.Context, to, body string) DeliveryResult {
  if n.cfg.Timeout > 0 {
    var cancel context.CancelFunc
    ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
    defer cancel()
  }

  type outcome struct {
    sid string
    err error
  }
  done := make(chan outcome, 1)
  go func() {
    sid, err := n.textService.SendText(ctx, to, body)
    done <- outcome{sid: sid, err: err}
  }()

  select {
  case out := <-done:
    if out.err != nil {
      return failed(out.err.Error())
    }
    sid := out.sid
    return DeliveryResult{Success: true, ProviderMessageID: &sid}
  case <-ctx.Done():
    return failed(fmt.Sprintf("sms provider did not respond: %v", ctx.Err()))
  }
}

func (n *smsNotifier) record(ctx context.Context, kind types.NotificationKind, phoneNumber string, result DeliveryResult, meta map[string]interface{}) {
  if n.notificationRepo == nil {
    return
  }
  entry := &types.Notification{
    PhoneNumber:       phoneNumber,
    Kind:              kind,
    Success:           result.Success,
    ProviderMessageID: result.ProviderMessageID,
    Error:             result.Error,
    CreatedAt:         time.Now().UTC(),
  }
  if meta != nil {
    entry.Metadata = datatypes.JSONMap(meta)
  }
  // the request ctx may already be cancelled by a timed out send
  if _, err := n.notificationRepo.Create(context.WithoutCancel(ctx), nil, entry); err != nil {
    n.log.Warn("Failed to record notification", "error", err)
  }
}

func failed(msg string) DeliveryResult {
  return DeliveryResult{Success: false, Error: &msg}
}
