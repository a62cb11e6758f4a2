package repos

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type SaleRecordRepo interface {
    Create(ctx context.Context, tx *gorm.DB, sale *types.SaleRecord) (*types.SaleRecord, error)
    GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.SaleRecord, error)
}

type saleRecordRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewSaleRecordRepo(db *gorm.DB, baseLog *logger.Logger) SaleRecordRepo {
    repoLog := baseLog.With("repo", "SaleRecordRepo")
    return &saleRecordRepo{db: db, log: repoLog}
}

func (sr *saleRecordRepo) Create(ctx context.Context, tx *gorm.DB, sale *types.SaleRecord) (*types.SaleRecord, error) {
    sr.log.Info("Starting Create SaleRecord now...")

    transaction := tx
    if transaction == nil {
        transaction = sr.db
    }

    if sale == nil {
        return nil, errors.New("sale record is nil")
    }
    if err := transaction.WithContext(ctx).Omit("Medicine").Create(sale).Error; err != nil {
        sr.log.Error("Failed to create sale record", "error", err)
        return nil, err
    }
    sr.log.Info("Successfully created sale record", "saleID", sale.ID)
    return sale, nil
}

// GetRecent returns the newest sales first with their medicine preloaded.
func (sr *saleRecordRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.SaleRecord, error) {
    transaction := tx
    if transaction == nil {
        transaction = sr.db
    }

    var results []*types.SaleRecord
    if err := transaction.WithContext(ctx).
        Preload("Medicine").
        Order("timestamp DESC").
        Order("id DESC").
        Limit(limit).
        Find(&results).Error; err != nil {
        sr.log.Error("Failed to fetch recent sales", "error", err)
        return nil, err
    }
    return results, nil
}
