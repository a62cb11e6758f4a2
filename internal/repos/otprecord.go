package repos

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type OtpRecordRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, record *types.OtpRecord) (*types.OtpRecord, error)

    // READ
    GetByPhoneNumbers(ctx context.Context, tx *gorm.DB, phoneNumbers []string) ([]*types.OtpRecord, error)
    LockByPhoneAndCode(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (*types.OtpRecord, error)
    LockVerifiedByPhone(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.OtpRecord, error)

    // PARTIAL UPDATE
    MarkVerified(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error

    // FULL (HARD) DELETE
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) error
    FullDeleteByPhoneNumbers(ctx context.Context, tx *gorm.DB, phoneNumbers []string) (int64, error)
    ConsumeVerified(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (bool, error)
    DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type otpRecordRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewOtpRecordRepo(db *gorm.DB, baseLog *logger.Logger) OtpRecordRepo {
    repoLog := baseLog.With("repo", "OtpRecordRepo")
    return &otpRecordRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (orr *otpRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.OtpRecord) (*types.OtpRecord, error) {
    orr.log.Info("Starting Create OtpRecord now...")

    transaction := tx
    if transaction == nil {
        transaction = orr.db
        orr.log.Debug("Transaction is nil, using orr.db")
    }

    if record == nil {
        return nil, errors.New("otp record is nil")
    }

    if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
        orr.log.Error("Failed to create otp record", "error", err)
        return nil, err
    }
    orr.log.Info("Successfully created otp record", "recordID", record.ID)
    return record, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

func (orr *otpRecordRepo) GetByPhoneNumbers(ctx context.Context, tx *gorm.DB, phoneNumbers []string) ([]*types.OtpRecord, error) {
    orr.log.Info("Starting GetByPhoneNumbers for OtpRecords...")

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    var results []*types.OtpRecord
    if len(phoneNumbers) == 0 {
        orr.log.Debug("No phone numbers provided, returning empty slice")
        return results, nil
    }

    if err := transaction.WithContext(ctx).
        Where("phone_number IN ?", phoneNumbers).
        Find(&results).Error; err != nil {
        orr.log.Error("Failed to fetch otp records by phone numbers", "error", err)
        return nil, err
    }
    orr.log.Info("Successfully fetched otp records by phone numbers", "count", len(results))
    return results, nil
}

// LockByPhoneAndCode returns the record matching both phone and code, locked for update,
// or nil when there is none.
func (orr *otpRecordRepo) LockByPhoneAndCode(ctx context.Context, tx *gorm.DB, phoneNumber, code string) (*types.OtpRecord, error) {
    orr.log.Info("Locking OtpRecord by phone and code now...", "phoneNumber", phoneNumber)

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    var record types.OtpRecord
    err := transaction.WithContext(ctx).
        Clauses(clause.Locking{Strength: "UPDATE"}).
        Where("phone_number = ? AND code = ?", phoneNumber, code).
        Take(&record).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        orr.log.Debug("No otp record matches phone and code", "phoneNumber", phoneNumber)
        return nil, nil
    }
    if err != nil {
        orr.log.Error("Failed to lock otp record by phone and code", "error", err)
        return nil, err
    }
    return &record, nil
}

func (orr *otpRecordRepo) LockVerifiedByPhone(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.OtpRecord, error) {
    orr.log.Info("Locking verified OtpRecord by phone now...", "phoneNumber", phoneNumber)

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    var record types.OtpRecord
    err := transaction.WithContext(ctx).
        Clauses(clause.Locking{Strength: "UPDATE"}).
        Where("phone_number = ? AND is_verified = ?", phoneNumber, true).
        Take(&record).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        orr.log.Debug("No verified otp record for phone", "phoneNumber", phoneNumber)
        return nil, nil
    }
    if err != nil {
        orr.log.Error("Failed to lock verified otp record", "error", err)
        return nil, err
    }
    return &record, nil
}

// ----------------------------------------------------------------
// PARTIAL UPDATE
// ----------------------------------------------------------------

func (orr *otpRecordRepo) MarkVerified(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error {
    orr.log.Info("Starting MarkVerified for OtpRecord now...", "recordID", recordID)

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    if recordID == uuid.Nil {
        orr.log.Debug("recordID is nil, skipping MarkVerified")
        return nil
    }

    res := transaction.WithContext(ctx).
        Model(&types.OtpRecord{}).
        Where("id = ?", recordID).
        Update("is_verified", true)
    if res.Error != nil {
        orr.log.Error("Failed to mark otp record verified", "error", res.Error)
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    orr.log.Info("Successfully marked otp record verified", "recordID", recordID)
    return nil
}

// ----------------------------------------------------------------
// FULL (HARD) DELETE
// ----------------------------------------------------------------

func (orr *otpRecordRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, recordIDs []uuid.UUID) error {
    orr.log.Info("Starting FullDeleteByIDs for OtpRecords now...")

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    if len(recordIDs) == 0 {
        orr.log.Debug("No otp record IDs provided, skipping full delete")
        return nil
    }

    if err := transaction.WithContext(ctx).
        Where("id IN ?", recordIDs).
        Delete(&types.OtpRecord{}).Error; err != nil {
        orr.log.Error("Failed to FULL delete otp records by IDs", "error", err)
        return err
    }
    orr.log.Info("Successfully FULL deleted otp records by IDs", "count", len(recordIDs))
    return nil
}

func (orr *otpRecordRepo) FullDeleteByPhoneNumbers(ctx context.Context, tx *gorm.DB, phoneNumbers []string) (int64, error) {
    orr.log.Info("Starting FullDeleteByPhoneNumbers for OtpRecords now...")

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    if len(phoneNumbers) == 0 {
        orr.log.Debug("No phone numbers provided, skipping full delete")
        return 0, nil
    }

    res := transaction.WithContext(ctx).
        Where("phone_number IN ?", phoneNumbers).
        Delete(&types.OtpRecord{})
    if res.Error != nil {
        orr.log.Error("Failed to FULL delete otp records by phone numbers", "error", res.Error)
        return 0, res.Error
    }
    orr.log.Info("Successfully FULL deleted otp records by phone numbers", "count", res.RowsAffected)
    return res.RowsAffected, nil
}

// ConsumeVerified deletes the record only if it is still verified. It reports whether
// this call removed it, so a record can be consumed at most once.
func (orr *otpRecordRepo) ConsumeVerified(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (bool, error) {
    orr.log.Info("Starting ConsumeVerified for OtpRecord now...", "recordID", recordID)

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    res := transaction.WithContext(ctx).
        Where("id = ? AND is_verified = ?", recordID, true).
        Delete(&types.OtpRecord{})
    if res.Error != nil {
        orr.log.Error("Failed to consume verified otp record", "error", res.Error)
        return false, res.Error
    }
    orr.log.Info("ConsumeVerified finished", "recordID", recordID, "rowsAffected", res.RowsAffected)
    return res.RowsAffected == 1, nil
}

func (orr *otpRecordRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
    orr.log.Info("Starting DeleteExpired for OtpRecords now...")

    transaction := tx
    if transaction == nil {
        transaction = orr.db
    }

    res := transaction.WithContext(ctx).
        Where("expires_at < ?", now).
        Delete(&types.OtpRecord{})
    if res.Error != nil {
        orr.log.Error("Failed to delete expired otp records", "error", res.Error)
        return 0, res.Error
    }
    orr.log.Info("Deleted expired otp records", "count", res.RowsAffected)
    return res.RowsAffected, nil
}
