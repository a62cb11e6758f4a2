package repos

import (
    "context"
    "errors"
    "time"

    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type UserTokenRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error)

    // READ
    GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.UserToken, error)

    // FULL (HARD) DELETE
    FullDeleteByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) (int64, error)
    DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type userTokenRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
    repoLog := baseLog.With("repo", "UserTokenRepo")
    return &userTokenRepo{db: db, log: repoLog}
}

//------------------------------------------------------------------------------
// CREATE
//------------------------------------------------------------------------------

func (utr *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, userTokens []*types.UserToken) ([]*types.UserToken, error) {
    utr.log.Info("Starting Create UserTokens now...")

    transaction := tx
    if transaction == nil {
        transaction = utr.db
        utr.log.Debug("Transaction is nil, using utr.db")
    }

    if len(userTokens) == 0 {
        utr.log.Debug("No userTokens provided, returning empty slice")
        return []*types.UserToken{}, nil
    }

    if err := transaction.WithContext(ctx).Omit("AdminUser", "Customer").Create(&userTokens).Error; err != nil {
        utr.log.Error("Failed to create userTokens", "error", err)
        return nil, err
    }
    utr.log.Info("Successfully created userTokens", "count", len(userTokens))
    return userTokens, nil
}

//------------------------------------------------------------------------------
// READ
//------------------------------------------------------------------------------

// GetByAccessToken returns nil, nil when the token is not persisted (never issued or revoked).
func (utr *userTokenRepo) GetByAccessToken(ctx context.Context, tx *gorm.DB, accessToken string) (*types.UserToken, error) {
    transaction := tx
    if transaction == nil {
        transaction = utr.db
    }

    var token types.UserToken
    err := transaction.WithContext(ctx).Where("access_token = ?", accessToken).Take(&token).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        utr.log.Debug("Access token not found")
        return nil, nil
    }
    if err != nil {
        utr.log.Error("Failed to fetch userToken by access token", "error", err)
        return nil, err
    }
    return &token, nil
}

//------------------------------------------------------------------------------
// FULL (HARD) DELETE
//------------------------------------------------------------------------------

func (utr *userTokenRepo) FullDeleteByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) (int64, error) {
    utr.log.Info("Starting FullDeleteByAccessTokens now...")

    transaction := tx
    if transaction == nil {
        transaction = utr.db
    }

    if len(accessTokens) == 0 {
        return 0, nil
    }
    res := transaction.WithContext(ctx).
        Where("access_token IN ?", accessTokens).
        Delete(&types.UserToken{})
    if res.Error != nil {
        utr.log.Error("Failed to FULL delete userTokens", "error", res.Error)
        return 0, res.Error
    }
    utr.log.Info("Successfully FULL deleted userTokens", "count", res.RowsAffected)
    return res.RowsAffected, nil
}

func (utr *userTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
    transaction := tx
    if transaction == nil {
        transaction = utr.db
    }

    res := transaction.WithContext(ctx).Where("expires_at < ?", now).Delete(&types.UserToken{})
    if res.Error != nil {
        utr.log.Error("Failed to delete expired userTokens", "error", res.Error)
        return 0, res.Error
    }
    return res.RowsAffected, nil
}
