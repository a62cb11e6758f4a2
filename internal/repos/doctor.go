package repos

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type DoctorRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, doctors []*types.Doctor) ([]*types.Doctor, error)

    // READ
    GetByID(ctx context.Context, tx *gorm.DB, doctorID uint) (*types.Doctor, error)
    GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Doctor, error)
    List(ctx context.Context, tx *gorm.DB, search string) ([]*types.Doctor, error)

    // FULL UPDATE
    Update(ctx context.Context, tx *gorm.DB, doctor *types.Doctor) (*types.Doctor, error)

    // FULL (HARD) DELETE
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, doctorIDs []uint) (int64, error)
}

type doctorRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewDoctorRepo(db *gorm.DB, baseLog *logger.Logger) DoctorRepo {
    repoLog := baseLog.With("repo", "DoctorRepo")
    return &doctorRepo{db: db, log: repoLog}
}

func (dr *doctorRepo) Create(ctx context.Context, tx *gorm.DB, doctors []*types.Doctor) ([]*types.Doctor, error) {
    dr.log.Info("Starting Create Doctors now...")

    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    if len(doctors) == 0 {
        dr.log.Debug("No doctors provided, returning empty slice")
        return []*types.Doctor{}, nil
    }

    if err := transaction.WithContext(ctx).Create(&doctors).Error; err != nil {
        dr.log.Error("Failed to create doctors", "error", err)
        return nil, err
    }
    dr.log.Info("Successfully created doctors", "count", len(doctors))
    return doctors, nil
}

// GetByID returns nil, nil when the doctor does not exist.
func (dr *doctorRepo) GetByID(ctx context.Context, tx *gorm.DB, doctorID uint) (*types.Doctor, error) {
    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    var doctor types.Doctor
    err := transaction.WithContext(ctx).Where("id = ?", doctorID).Take(&doctor).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        dr.log.Debug("Doctor not found", "doctorID", doctorID)
        return nil, nil
    }
    if err != nil {
        dr.log.Error("Failed to fetch doctor by ID", "error", err)
        return nil, err
    }
    return &doctor, nil
}

func (dr *doctorRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Doctor, error) {
    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    var results []*types.Doctor
    if len(names) == 0 {
        return results, nil
    }
    if err := transaction.WithContext(ctx).Where("name IN ?", names).Find(&results).Error; err != nil {
        dr.log.Error("Failed to fetch doctors by names", "error", err)
        return nil, err
    }
    return results, nil
}

// List returns doctors ordered by name. A non-empty search matches name or specialty.
func (dr *doctorRepo) List(ctx context.Context, tx *gorm.DB, search string) ([]*types.Doctor, error) {
    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    q := transaction.WithContext(ctx).Model(&types.Doctor{})
    if search != "" {
        like := "%" + search + "%"
        q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(specialty) LIKE LOWER(?)", like, like)
    }
    var results []*types.Doctor
    if err := q.Order("name ASC").Find(&results).Error; err != nil {
        dr.log.Error("Failed to list doctors", "error", err)
        return nil, err
    }
    dr.log.Debug("Listed doctors", "search", search, "count", len(results))
    return results, nil
}

func (dr *doctorRepo) Update(ctx context.Context, tx *gorm.DB, doctor *types.Doctor) (*types.Doctor, error) {
    dr.log.Info("Starting Update Doctor now...", "doctorID", doctor.ID)

    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    if err := transaction.WithContext(ctx).Save(doctor).Error; err != nil {
        dr.log.Error("Failed to update doctor", "error", err)
        return nil, err
    }
    return doctor, nil
}

func (dr *doctorRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, doctorIDs []uint) (int64, error) {
    dr.log.Info("Starting FullDeleteByIDs for Doctors now...")

    transaction := tx
    if transaction == nil {
        transaction = dr.db
    }

    if len(doctorIDs) == 0 {
        return 0, nil
    }
    res := transaction.WithContext(ctx).Where("id IN ?", doctorIDs).Delete(&types.Doctor{})
    if res.Error != nil {
        dr.log.Error("Failed to FULL delete doctors", "error", res.Error)
        return 0, res.Error
    }
    dr.log.Info("Successfully FULL deleted doctors", "count", res.RowsAffected)
    return res.RowsAffected, nil
}
