package repos

import (
    "context"
    "errors"

    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type MedicineRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, medicines []*types.Medicine) ([]*types.Medicine, error)

    // READ
    GetByID(ctx context.Context, tx *gorm.DB, medicineID uint) (*types.Medicine, error)
    LockByID(ctx context.Context, tx *gorm.DB, medicineID uint) (*types.Medicine, error)
    GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Medicine, error)
    List(ctx context.Context, tx *gorm.DB, search string) ([]*types.Medicine, error)

    // PARTIAL UPDATE
    SetStock(ctx context.Context, tx *gorm.DB, medicineID uint, quantity int) error
    SetImage(ctx context.Context, tx *gorm.DB, medicineID uint, bucketKey, url string) error

    // FULL UPDATE
    Update(ctx context.Context, tx *gorm.DB, medicine *types.Medicine) (*types.Medicine, error)

    // FULL (HARD) DELETE
    FullDeleteByIDs(ctx context.Context, tx *gorm.DB, medicineIDs []uint) (int64, error)
}

type medicineRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewMedicineRepo(db *gorm.DB, baseLog *logger.Logger) MedicineRepo {
    repoLog := baseLog.With("repo", "MedicineRepo")
    return &medicineRepo{db: db, log: repoLog}
}

func (mr *medicineRepo) Create(ctx context.Context, tx *gorm.DB, medicines []*types.Medicine) ([]*types.Medicine, error) {
    mr.log.Info("Starting Create Medicines now...")

    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    if len(medicines) == 0 {
        return []*types.Medicine{}, nil
    }
    if err := transaction.WithContext(ctx).Create(&medicines).Error; err != nil {
        mr.log.Error("Failed to create medicines", "error", err)
        return nil, err
    }
    mr.log.Info("Successfully created medicines", "count", len(medicines))
    return medicines, nil
}

// GetByID returns nil, nil when the medicine does not exist.
func (mr *medicineRepo) GetByID(ctx context.Context, tx *gorm.DB, medicineID uint) (*types.Medicine, error) {
    return mr.getByID(ctx, tx, medicineID, false)
}

func (mr *medicineRepo) LockByID(ctx context.Context, tx *gorm.DB, medicineID uint) (*types.Medicine, error) {
    return mr.getByID(ctx, tx, medicineID, true)
}

func (mr *medicineRepo) getByID(ctx context.Context, tx *gorm.DB, medicineID uint, lock bool) (*types.Medicine, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    q := transaction.WithContext(ctx)
    if lock {
        mr.log.Debug("Locking medicine row (for update)", "medicineID", medicineID)
        q = q.Clauses(clause.Locking{Strength: "UPDATE"})
    }
    var medicine types.Medicine
    err := q.Where("id = ?", medicineID).Take(&medicine).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        mr.log.Error("Failed to fetch medicine by ID", "error", err)
        return nil, err
    }
    return &medicine, nil
}

func (mr *medicineRepo) GetByNames(ctx context.Context, tx *gorm.DB, names []string) ([]*types.Medicine, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    var results []*types.Medicine
    if len(names) == 0 {
        return results, nil
    }
    if err := transaction.WithContext(ctx).Where("name IN ?", names).Find(&results).Error; err != nil {
        mr.log.Error("Failed to fetch medicines by names", "error", err)
        return nil, err
    }
    return results, nil
}

func (mr *medicineRepo) List(ctx context.Context, tx *gorm.DB, search string) ([]*types.Medicine, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    q := transaction.WithContext(ctx).Model(&types.Medicine{})
    if search != "" {
        q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
    }
    var results []*types.Medicine
    if err := q.Order("name ASC").Find(&results).Error; err != nil {
        mr.log.Error("Failed to list medicines", "error", err)
        return nil, err
    }
    return results, nil
}

func (mr *medicineRepo) SetStock(ctx context.Context, tx *gorm.DB, medicineID uint, quantity int) error {
    mr.log.Info("Setting medicine stock now...", "medicineID", medicineID, "quantity", quantity)

    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    res := transaction.WithContext(ctx).
        Model(&types.Medicine{}).
        Where("id = ?", medicineID).
        Update("stock_quantity", quantity)
    if res.Error != nil {
        mr.log.Error("Failed to set medicine stock", "error", res.Error)
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (mr *medicineRepo) SetImage(ctx context.Context, tx *gorm.DB, medicineID uint, bucketKey, url string) error {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    res := transaction.WithContext(ctx).
        Model(&types.Medicine{}).
        Where("id = ?", medicineID).
        Updates(map[string]interface{}{"image_bucket_key": bucketKey, "image_url": url})
    if res.Error != nil {
        mr.log.Error("Failed to set medicine image", "error", res.Error)
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (mr *medicineRepo) Update(ctx context.Context, tx *gorm.DB, medicine *types.Medicine) (*types.Medicine, error) {
    mr.log.Info("Starting Update Medicine now...", "medicineID", medicine.ID)

    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    if err := transaction.WithContext(ctx).Save(medicine).Error; err != nil {
        mr.log.Error("Failed to update medicine", "error", err)
        return nil, err
    }
    return medicine, nil
}

func (mr *medicineRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, medicineIDs []uint) (int64, error) {
    mr.log.Info("Starting FullDeleteByIDs for Medicines now...")

    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }

    if len(medicineIDs) == 0 {
        return 0, nil
    }
    res := transaction.WithContext(ctx).Where("id IN ?", medicineIDs).Delete(&types.Medicine{})
    if res.Error != nil {
        mr.log.Error("Failed to FULL delete medicines", "error", res.Error)
        return 0, res.Error
    }
    return res.RowsAffected, nil
}
