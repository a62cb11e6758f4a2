package services

import (
  "context"
  "fmt"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

var scheduledAtLayouts = []string{
  time.RFC3339,
  "2006-01-02T15:04:05",
  "2006-01-02T15:04",
  "2006-01-02 15:04:05",
  "2006-01-02 15:04",
}

// ParseScheduledAt accepts RFC 3339 or a naive local date-time, which is read as UTC.
func ParseScheduledAt(s string) (time.Time, error) {
  s = strings.TrimSpace(s)
  for _, layout := range scheduledAtLayouts {
    if t, err := time.Parse(layout, s); err == nil {
      return t.UTC(), nil
    }
  }
  return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

type CreateAppointmentInput struct {
  PhoneNumber     string
  CustomerName    string
  DoctorID        uint
  ScheduledAt     string
}

type AppointmentService interface {
  CreateAppointment(ctx context.Context, input CreateAppointmentInput) (*types.Appointment, error)
  ListAppointments(ctx context.Context) ([]*types.Appointment, error)
  GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*types.Appointment, error)
  GetAppointmentsByPhone(ctx context.Context, phoneNumber string) ([]*types.Appointment, error)
  DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error

  bookLogic(ctx context.Context, tx *gorm.DB, phoneNumber, customerName string, doctorID uint, scheduledAt time.Time) (*types.Appointment, error)
}

type appointmentService struct {
  db                *gorm.DB
  log               *logger.Logger
  otpRecordRepo     repos.OtpRecordRepo
  appointmentRepo   repos.AppointmentRepo
  doctorRepo        repos.DoctorRepo
  notifier          Notifier
  now               func() time.Time
}

func NewAppointmentService(
  db                *gorm.DB,
  log               *logger.Logger,
  otpRecordRepo     repos.OtpRecordRepo,
  appointmentRepo   repos.AppointmentRepo,
  doctorRepo        repos.DoctorRepo,
  notifier          Notifier,
) AppointmentService {
  serviceLog := log.With("service", "AppointmentService")
  return &appointmentService{
    db:               db,
    log:              serviceLog,
    otpRecordRepo:    otpRecordRepo,
    appointmentRepo:  appointmentRepo,
    doctorRepo:       doctorRepo,
    notifier:         notifier,
    now:              func() time.Time { return time.Now().UTC() },
  }
}

//----------------------------------------------------------------------------------------------------------------------
// CreateAppointment, bookLogic
//----------------------------------------------------------------------------------------------------------------------

func (as *appointmentService) CreateAppointment(ctx context.Context, input CreateAppointmentInput) (*types.Appointment, error) {
  as.log.Info("Starting CreateAppointment now...")

  //1) Normalize & Validate
  phone := normalization.ParseInputString(input.PhoneNumber)
  name := normalization.ParseInputString(input.CustomerName)
  date := normalization.ParseInputString(input.ScheduledAt)
  if phone == "" || name == "" || date == "" || input.DoctorID == 0 {
    return nil, errordata.New(errordata.KindInvalidInput, "All fields are required")
  }
  scheduledAt, err := ParseScheduledAt(date)
  if err != nil {
    as.log.Warn("Unparseable appointment date", "date", date)
    return nil, errordata.Wrap(errordata.KindInvalidInput, "Invalid date format", err)
  }

  //2) Book and consume the verification in one transaction
  var appointment *types.Appointment
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    created, err := as.bookLogic(ctx, tx, phone, name, input.DoctorID, scheduledAt)
    if err != nil {
      return err
    }
    appointment = created
    return nil
  }); err != nil {
    as.log.Warn("Failed to book appointment", "phoneNumber", phone, "error", err)
    return nil, err
  }

  //3) Confirmation is best effort
  result := as.notifier.SendAppointmentConfirmation(ctx, phone, appointment.Doctor.Name, appointment.ScheduledAt, appointment.ID)
  if !result.Success {
    as.log.Warn("Appointment confirmation not delivered", "appointmentID", appointment.ID, "error", result.ErrorMessage())
  }
  as.log.Info("Appointment booked", "appointmentID", appointment.ID, "doctorID", appointment.DoctorID)
  return appointment, nil
}

func (as *appointmentService) bookLogic(ctx context.Context, tx *gorm.DB, phoneNumber, customerName string, doctorID uint, scheduledAt time.Time) (*types.Appointment, error) {
  notVerified := errordata.New(errordata.KindNotVerified, "Phone number not verified. Please verify OTP first.")

  record, err := as.otpRecordRepo.LockVerifiedByPhone(ctx, tx, phoneNumber)
  if err != nil {
    return nil, fmt.Errorf("failed to look up verification: %w", err)
  }
  // past expires_at a verification no longer counts, purged or not
  if record == nil || record.IsExpired(as.now()) {
    return nil, notVerified
  }

  doctor, err := as.doctorRepo.GetByID(ctx, tx, doctorID)
  if err != nil {
    return nil, fmt.Errorf("failed to look up doctor: %w", err)
  }
  if doctor == nil {
    return nil, errordata.New(errordata.KindDoctorNotFound, "Doctor not found")
  }

  appointment := &types.Appointment{
    DoctorID:       doctor.ID,
    CustomerName:   customerName,
    PhoneNumber:    phoneNumber,
    ScheduledAt:    scheduledAt,
    IsVerified:     true,
    CreatedAt:      as.now(),
  }
  if _, err := as.appointmentRepo.Create(ctx, tx, appointment); err != nil {
    return nil, fmt.Errorf("failed to create appointment: %w", err)
  }

  // a concurrent booking may have consumed the record since it was read
  consumed, err := as.otpRecordRepo.ConsumeVerified(ctx, tx, record.ID)
  if err != nil {
    return nil, fmt.Errorf("failed to consume verification: %w", err)
  }
  if !consumed {
    return nil, notVerified
  }
  appointment.Doctor = doctor
  return appointment, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Admin reads & deletes
//----------------------------------------------------------------------------------------------------------------------

func (as *appointmentService) ListAppointments(ctx context.Context) ([]*types.Appointment, error) {
  return as.appointmentRepo.List(ctx, nil)
}

func (as *appointmentService) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*types.Appointment, error) {
  appointment, err := as.appointmentRepo.GetByID(ctx, nil, appointmentID)
  if err != nil {
    return nil, err
  }
  if appointment == nil {
    return nil, errordata.New(errordata.KindNotFound, "Appointment not found")
  }
  return appointment, nil
}

func (as *appointmentService) GetAppointmentsByPhone(ctx context.Context, phoneNumber string) ([]*types.Appointment, error) {
  phone := normalization.ParseInputString(phoneNumber)
  if phone == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Phone number required")
  }
  return as.appointmentRepo.GetByPhoneNumber(ctx, nil, phone)
}

func (as *appointmentService) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
  n, err := as.appointmentRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{appointmentID})
  if err != nil {
    return err
  }
  if n == 0 {
    return errordata.New(errordata.KindNotFound, "Appointment not found")
  }
  return nil
}
