package repos

import (
    "context"
    "errors"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type AdminUserRepo interface {
    Create(ctx context.Context, tx *gorm.DB, user *types.AdminUser) (*types.AdminUser, error)
    GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AdminUser, error)
    GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.AdminUser, error)
    UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
}

type adminUserRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewAdminUserRepo(db *gorm.DB, baseLog *logger.Logger) AdminUserRepo {
    repoLog := baseLog.With("repo", "AdminUserRepo")
    return &adminUserRepo{db: db, log: repoLog}
}

func (aur *adminUserRepo) Create(ctx context.Context, tx *gorm.DB, user *types.AdminUser) (*types.AdminUser, error) {
    aur.log.Info("Starting Create AdminUser now...")

    transaction := tx
    if transaction == nil {
        transaction = aur.db
    }

    if user == nil {
        return nil, errors.New("admin user is nil")
    }
    if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
        aur.log.Error("Failed to create admin user", "error", err)
        return nil, err
    }
    aur.log.Info("Successfully created admin user", "userID", user.ID)
    return user, nil
}

func (aur *adminUserRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.AdminUser, error) {
    return aur.take(ctx, tx, "id = ?", userID)
}

// GetByUsername returns nil, nil when the username is unknown.
func (aur *adminUserRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.AdminUser, error) {
    return aur.take(ctx, tx, "username = ?", username)
}

func (aur *adminUserRepo) take(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (*types.AdminUser, error) {
    transaction := tx
    if transaction == nil {
        transaction = aur.db
    }

    var user types.AdminUser
    err := transaction.WithContext(ctx).Where(query, arg).Take(&user).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        aur.log.Error("Failed to fetch admin user", "error", err)
        return nil, err
    }
    return &user, nil
}

func (aur *adminUserRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
    transaction := tx
    if transaction == nil {
        transaction = aur.db
    }

    var count int64
    if err := transaction.WithContext(ctx).
        Model(&types.AdminUser{}).
        Where("username = ?", username).
        Count(&count).Error; err != nil {
        aur.log.Error("Failed to check username existence", "error", err)
        return false, err
    }
    return count > 0, nil
}
