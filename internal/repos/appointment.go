package repos

import (
    "context"
    "errors"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type AppointmentRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, appointment *types.Appointment) (*types.Appointment, error)

    // READ
    GetByID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) (*types.Appointment, error)
    GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) ([]*types.Appointment, error)
    List(ctx context.Context, tx *gorm.DB) ([]*types.Appointment, error)

    // FULL (HARD) DELETE
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, appointmentIDs []uuid.UUID) (int64, error)
}

type appointmentRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewAppointmentRepo(db *gorm.DB, baseLog *logger.Logger) AppointmentRepo {
    repoLog := baseLog.With("repo", "AppointmentRepo")
    return &appointmentRepo{db: db, log: repoLog}
}

func (ar *appointmentRepo) Create(ctx context.Context, tx *gorm.DB, appointment *types.Appointment) (*types.Appointment, error) {
    ar.log.Info("Starting Create Appointment now...")

    transaction := tx
    if transaction == nil {
        transaction = ar.db
        ar.log.Debug("Transaction is nil, using ar.db")
    }

    if appointment == nil {
        return nil, errors.New("appointment is nil")
    }

    if err := transaction.WithContext(ctx).Omit("Doctor").Create(appointment).Error; err != nil {
        ar.log.Error("Failed to create appointment", "error", err)
        return nil, err
    }
    ar.log.Info("Successfully created appointment", "appointmentID", appointment.ID)
    return appointment, nil
}

// GetByID returns nil, nil when no appointment has the given id.
func (ar *appointmentRepo) GetByID(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID) (*types.Appointment, error) {
    transaction := tx
    if transaction == nil {
        transaction = ar.db
    }

    var appointment types.Appointment
    err := transaction.WithContext(ctx).
        Preload("Doctor").
        Where("id = ?", appointmentID).
        Take(&appointment).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        ar.log.Error("Failed to fetch appointment by ID", "error", err)
        return nil, err
    }
    return &appointment, nil
}

func (ar *appointmentRepo) GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) ([]*types.Appointment, error) {
    ar.log.Info("Fetching appointments by phone number now...", "phoneNumber", phoneNumber)

    transaction := tx
    if transaction == nil {
        transaction = ar.db
    }

    var results []*types.Appointment
    if err := transaction.WithContext(ctx).
        Preload("Doctor").
        Where("phone_number = ?", phoneNumber).
        Order("created_at DESC").
        Find(&results).Error; err != nil {
        ar.log.Error("Failed to fetch appointments by phone number", "error", err)
        return nil, err
    }
    ar.log.Info("Successfully fetched appointments by phone number", "count", len(results))
    return results, nil
}

func (ar *appointmentRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Appointment, error) {
    transaction := tx
    if transaction == nil {
        transaction = ar.db
    }

    var results []*types.Appointment
    if err := transaction.WithContext(ctx).
        Preload("Doctor").
        Order("created_at DESC").
        Find(&results).Error; err != nil {
        ar.log.Error("Failed to list appointments", "error", err)
        return nil, err
    }
    return results, nil
}

func (ar *appointmentRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, appointmentIDs []uuid.UUID) (int64, error) {
    ar.log.Info("Starting FullDeleteByIDs for Appointments now...")

    transaction := tx
    if transaction == nil {
        transaction = ar.db
    }

    if len(appointmentIDs) == 0 {
        return 0, nil
    }

    res := transaction.WithContext(ctx).
        Where("id IN ?", appointmentIDs).
        Delete(&types.Appointment{})
    if res.Error != nil {
        ar.log.Error("Failed to FULL delete appointments", "error", res.Error)
        return 0, res.Error
    }
    ar.log.Info("Successfully FULL deleted appointments", "count", res.RowsAffected)
    return res.RowsAffected, nil
}
