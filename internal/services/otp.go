package services

import (
  "context"
  "crypto/rand"
  "fmt"
  "math/big"
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

const (
  OtpCodeLength     = 6
  DefaultOtpTTL     = 10 * time.Minute
)

type OtpRequestResult struct {
  PhoneNumber   string
  MessageID     string
}

type OtpService interface {
  RequestOtp(ctx context.Context, phoneNumber string) (*OtpRequestResult, error)
  VerifyOtp(ctx context.Context, phoneNumber, code string) (*types.OtpRecord, error)
  RedeemOtp(ctx context.Context, phoneNumber, code string) error
  PurgeExpired(ctx context.Context) (int64, error)

  replaceOtpLogic(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.OtpRecord, error)
  checkOtpLogic(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (*types.OtpRecord, bool, error)
  redeemLogic(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (bool, error)
}

type OtpServiceConfig struct {
  TTL           time.Duration
  Now           func() time.Time
  GenerateCode  func() (string, error)
}

type otpService struct {
  db              *gorm.DB
  log             *logger.Logger
  otpRecordRepo   repos.OtpRecordRepo
  notifier        Notifier
  ttl             time.Duration
  now             func() time.Time
  generateCode    func() (string, error)
}

func NewOtpService(db *gorm.DB, log *logger.Logger, otpRecordRepo repos.OtpRecordRepo, notifier Notifier, cfg OtpServiceConfig) OtpService {
  serviceLog := log.With("service", "OtpService")
  if cfg.TTL <= 0 {
    cfg.TTL = DefaultOtpTTL
  }
  if cfg.Now == nil {
    cfg.Now = func() time.Time { return time.Now().UTC() }
  }
  if cfg.GenerateCode == nil {
    cfg.GenerateCode = GenerateOtpCode
  }
  return &otpService{
    db:             db,
    log:            serviceLog,
    otpRecordRepo:  otpRecordRepo,
    notifier:       notifier,
    ttl:            cfg.TTL,
    now:            cfg.Now,
    generateCode:   cfg.GenerateCode,
  }
}

//----------------------------------------------------------------------------------------------------------------------
// RequestOtp, replaceOtpLogic
//----------------------------------------------------------------------------------------------------------------------

func (ots *otpService) RequestOtp(ctx context.Context, phoneNumber string) (*OtpRequestResult, error) {
  ots.log.Info("Starting RequestOtp now...")

  //1) Normalize & Validate
  phone := normalization.ParseInputString(phoneNumber)
  if phone == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Phone number is required")
  }
  if !normalization.IsValidPhoneNumber(phone) {
    ots.log.Warn("Invalid phone number format, Cannot proceed.", "phoneNumber", phone)
    return nil, errordata.New(errordata.KindInvalidInput, "Invalid phone number format")
  }

  //2) Supersede any previous code and store the new one
  var record *types.OtpRecord
  if err := ots.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    rec, err := ots.replaceOtpLogic(ctx, tx, phone)
    if err != nil {
      return err
    }
    record = rec
    return nil
  }); err != nil {
    ots.log.Warn("Failed to store otp record, Cannot proceed.", "error", err)
    return nil, err
  }

  //3) Deliver outside the transaction; the record stays on failure
  result := ots.notifier.SendOtp(ctx, phone, record.Code)
  if !result.Success {
    ots.log.Warn("Failed to deliver OTP", "phoneNumber", phone, "error", result.ErrorMessage())
    return nil, errordata.New(errordata.KindNotifier, "Failed to send OTP: "+result.ErrorMessage())
  }
  ots.log.Info("OTP sent", "phoneNumber", phone)
  var messageID string
  if result.ProviderMessageID != nil {
    messageID = *result.ProviderMessageID
  }
  return &OtpRequestResult{PhoneNumber: phone, MessageID: messageID}, nil
}

func (ots *otpService) replaceOtpLogic(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.OtpRecord, error) {
  removed, err := ots.otpRecordRepo.FullDeleteByPhoneNumbers(ctx, tx, []string{phoneNumber})
  if err != nil {
    return nil, fmt.Errorf("failed to remove previous otp records: %w", err)
  }
  if removed > 0 {
    ots.log.Debug("Superseded previous otp records", "phoneNumber", phoneNumber, "count", removed)
  }

  code, err := ots.generateCode()
  if err != nil {
    return nil, fmt.Errorf("failed to generate otp code: %w", err)
  }
  now := ots.now()
  record := &types.OtpRecord{
    PhoneNumber:  phoneNumber,
    Code:         code,
    CreatedAt:    now,
    ExpiresAt:    now.Add(ots.ttl),
  }
  if _, err := ots.otpRecordRepo.Create(ctx, tx, record); err != nil {
    return nil, fmt.Errorf("failed to create otp record: %w", err)
  }
  return record, nil
}

//----------------------------------------------------------------------------------------------------------------------
// VerifyOtp, RedeemOtp, checkOtpLogic
//----------------------------------------------------------------------------------------------------------------------

func (ots *otpService) VerifyOtp(ctx context.Context, phoneNumber, code string) (*types.OtpRecord, error) {
  ots.log.Info("Starting VerifyOtp now...")
  phone := normalization.ParseInputString(phoneNumber)
  otp := normalization.ParseInputString(code)
  if phone == "" || otp == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Phone number and OTP are required")
  }

  var verified *types.OtpRecord
  var expired bool
  if err := ots.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    rec, isExpired, err := ots.checkOtpLogic(ctx, tx, phone, otp)
    if err != nil {
      return err
    }
    if isExpired {
      // commit the delete, report after
      expired = true
      return nil
    }
    if err := ots.otpRecordRepo.MarkVerified(ctx, tx, rec.ID); err != nil {
      return fmt.Errorf("failed to mark otp verified: %w", err)
    }
    rec.IsVerified = true
    verified = rec
    return nil
  }); err != nil {
    return nil, err
  }
  if expired {
    return nil, errordata.New(errordata.KindOtpExpired, "OTP has expired")
  }
  ots.log.Info("OTP verified", "phoneNumber", phone)
  return verified, nil
}

// RedeemOtp checks the code like VerifyOtp but consumes the record on success.
func (ots *otpService) RedeemOtp(ctx context.Context, phoneNumber, code string) error {
  ots.log.Info("Starting RedeemOtp now...")
  phone := normalization.ParseInputString(phoneNumber)
  otp := normalization.ParseInputString(code)
  if phone == "" || otp == "" {
    return errordata.New(errordata.KindInvalidInput, "Phone number and OTP are required")
  }

  var expired bool
  if err := ots.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    isExpired, err := ots.redeemLogic(ctx, tx, phone, otp)
    expired = isExpired
    return err
  }); err != nil {
    return err
  }
  if expired {
    return errordata.New(errordata.KindOtpExpired, "OTP has expired")
  }
  return nil
}

// redeemLogic deletes the matching record inside tx. It reports an expired record through
// the bool with a nil error so the caller can commit the delete of the stale record.
func (ots *otpService) redeemLogic(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (bool, error) {
  rec, isExpired, err := ots.checkOtpLogic(ctx, tx, phoneNumber, code)
  if err != nil {
    return false, err
  }
  if isExpired {
    return true, nil
  }
  if err := ots.otpRecordRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{rec.ID}); err != nil {
    return false, fmt.Errorf("failed to consume otp record: %w", err)
  }
  return false, nil
}

// checkOtpLogic locks the record matching phone and code. An expired record is deleted
// and reported through the bool so the caller can commit the delete.
func (ots *otpService) checkOtpLogic(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (*types.OtpRecord, bool, error) {
  rec, err := ots.otpRecordRepo.LockByPhoneAndCode(ctx, tx, phoneNumber, code)
  if err != nil {
    return nil, false, fmt.Errorf("failed to look up otp record: %w", err)
  }
  if rec == nil {
    ots.log.Warn("Invalid OTP presented", "phoneNumber", phoneNumber)
    return nil, false, errordata.New(errordata.KindInvalidOtp, "Invalid OTP")
  }
  if rec.IsExpired(ots.now()) {
    ots.log.Warn("Expired OTP presented, deleting record", "phoneNumber", phoneNumber, "expiresAt", rec.ExpiresAt)
    if err := ots.otpRecordRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{rec.ID}); err != nil {
      return nil, false, fmt.Errorf("failed to delete expired otp record: %w", err)
    }
    return rec, true, nil
  }
  return rec, false, nil
}

//----------------------------------------------------------------------------------------------------------------------
// PurgeExpired
//----------------------------------------------------------------------------------------------------------------------

func (ots *otpService) PurgeExpired(ctx context.Context) (int64, error) {
  n, err := ots.otpRecordRepo.DeleteExpired(ctx, nil, ots.now())
  if err != nil {
    return 0, fmt.Errorf("failed to purge expired otp records: %w", err)
  }
  return n, nil
}

// GenerateOtpCode returns OtpCodeLength digits, each drawn independently and
// uniformly from crypto/rand.
func GenerateOtpCode() (string, error) {
  var sb strings.Builder
  sb.Grow(OtpCodeLength)
  ten := big.NewInt(10)
  for i := 0; i < OtpCodeLength; i++ {
    n, err := rand.Int(rand.Reader, ten)
    if err != nil {
      return "", err
    }
    sb.WriteByte(byte('0' + n.Int64()))
  }
  return sb.String(), nil
}
