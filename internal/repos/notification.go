package repos

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type NotificationRepo interface {
    Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) (*types.Notification, error)
    GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) ([]*types.Notification, error)
}

type notificationRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
    repoLog := baseLog.With("repo", "NotificationRepo")
    return &notificationRepo{db: db, log: repoLog}
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *types.Notification) (*types.Notification, error) {
    transaction := tx
    if transaction == nil {
        transaction = nr.db
    }

    if notification == nil {
        return nil, errors.New("notification is nil")
    }
    if err := transaction.WithContext(ctx).Create(notification).Error; err != nil {
        nr.log.Error("Failed to create notification", "error", err)
        return nil, err
    }
    nr.log.Debug("Notification logged", "notificationID", notification.ID, "kind", notification.Kind, "success", notification.Success)
    return notification, nil
}

func (nr *notificationRepo) GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) ([]*types.Notification, error) {
    transaction := tx
    if transaction == nil {
        transaction = nr.db
    }

    var results []*types.Notification
    if err := transaction.WithContext(ctx).
        Where("phone_number = ?", phoneNumber).
        Order("created_at DESC").
        Find(&results).Error; err != nil {
        nr.log.Error("Failed to fetch notifications", "error", err)
        return nil, err
    }
    return results, nil
}
