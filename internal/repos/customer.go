package repos

import (
    "context"
    "errors"

    "gorm.io/gorm"

    "github.com/medicare-pharmacy/medicare-backend/internal/logger"
    "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type CustomerRepo interface {
    Create(ctx context.Context, tx *gorm.DB, customer *types.Customer) (*types.Customer, error)
    GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.Customer, error)
    GetByID(ctx context.Context, tx *gorm.DB, customerID uint) (*types.Customer, error)
    UpdateName(ctx context.Context, tx *gorm.DB, customerID uint, name string) error
}

type customerRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewCustomerRepo(db *gorm.DB, baseLog *logger.Logger) CustomerRepo {
    repoLog := baseLog.With("repo", "CustomerRepo")
    return &customerRepo{db: db, log: repoLog}
}

func (cr *customerRepo) Create(ctx context.Context, tx *gorm.DB, customer *types.Customer) (*types.Customer, error) {
    cr.log.Info("Starting Create Customer now...")

    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }

    if customer == nil {
        return nil, errors.New("customer is nil")
    }
    if err := transaction.WithContext(ctx).Create(customer).Error; err != nil {
        cr.log.Error("Failed to create customer", "error", err)
        return nil, err
    }
    cr.log.Info("Successfully created customer", "customerID", customer.ID)
    return customer, nil
}

// GetByPhoneNumber returns nil, nil when no customer has the phone number.
func (cr *customerRepo) GetByPhoneNumber(ctx context.Context, tx *gorm.DB, phoneNumber string) (*types.Customer, error) {
    return cr.take(ctx, tx, "phone_number = ?", phoneNumber)
}

func (cr *customerRepo) GetByID(ctx context.Context, tx *gorm.DB, customerID uint) (*types.Customer, error) {
    return cr.take(ctx, tx, "id = ?", customerID)
}

func (cr *customerRepo) take(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (*types.Customer, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }

    var customer types.Customer
    err := transaction.WithContext(ctx).Where(query, arg).Take(&customer).Error
    if errors.Is(err, gorm.ErrRecordNotFound) {
        return nil, nil
    }
    if err != nil {
        cr.log.Error("Failed to fetch customer", "error", err)
        return nil, err
    }
    return &customer, nil
}

func (cr *customerRepo) UpdateName(ctx context.Context, tx *gorm.DB, customerID uint, name string) error {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }

    if err := transaction.WithContext(ctx).
        Model(&types.Customer{}).
        Where("id = ?", customerID).
        Update("name", name).Error; err != nil {
        cr.log.Error("Failed to update customer name", "error", err)
        return err
    }
    return nil
}
