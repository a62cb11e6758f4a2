package services

import (
  "context"
  "fmt"
  "html"
  "time"

  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

const RecentSalesLimit = 10

// SalesBroadcaster pushes a recorded sale to live feed subscribers.
type SalesBroadcaster interface {
  BroadcastSale(ctx context.Context, sale types.SaleView) error
}

type SaleServiceConfig struct {
  LowStockThreshold   int
  AlertEmail          string
}

type SaleService interface {
  RecordSale(ctx context.Context, medicineID uint, quantity int) (*types.SaleView, error)
  RecentSales(ctx context.Context) ([]types.SaleView, error)

  recordSaleLogic(ctx context.Context, tx *gorm.DB, medicineID uint, quantity int) (*types.SaleRecord, error)
}

type saleService struct {
  db                *gorm.DB
  log               *logger.Logger
  medicineRepo      repos.MedicineRepo
  saleRecordRepo    repos.SaleRecordRepo
  broadcaster       SalesBroadcaster
  emailService      EmailService
  cfg               SaleServiceConfig
}

// NewSaleService takes optional broadcaster and emailService.
func NewSaleService(
  db                *gorm.DB,
  log               *logger.Logger,
  medicineRepo      repos.MedicineRepo,
  saleRecordRepo    repos.SaleRecordRepo,
  broadcaster       SalesBroadcaster,
  emailService      EmailService,
  cfg               SaleServiceConfig,
) SaleService {
  return &saleService{
    db:               db,
    log:              log.With("service", "SaleService"),
    medicineRepo:     medicineRepo,
    saleRecordRepo:   saleRecordRepo,
    broadcaster:      broadcaster,
    emailService:     emailService,
    cfg:              cfg,
  }
}

func (ss *saleService) RecordSale(ctx context.Context, medicineID uint, quantity int) (*types.SaleView, error) {
  ss.log.Info("Starting RecordSale now...", "medicineID", medicineID, "quantity", quantity)
  if medicineID == 0 {
    return nil, errordata.New(errordata.KindInvalidInput, "Medicine is required")
  }
  if quantity <= 0 {
    return nil, errordata.New(errordata.KindInvalidInput, "Quantity must be greater than zero")
  }

  var sale *types.SaleRecord
  if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    created, err := ss.recordSaleLogic(ctx, tx, medicineID, quantity)
    if err != nil {
      return err
    }
    sale = created
    return nil
  }); err != nil {
    return nil, err
  }

  view := types.NewSaleView(sale)
  if ss.broadcaster != nil {
    if err := ss.broadcaster.BroadcastSale(ctx, view); err != nil {
      ss.log.Warn("Failed to broadcast sale", "saleID", sale.ID, "error", err)
    }
  }
  ss.maybeAlertLowStock(ctx, sale.Medicine)
  return &view, nil
}

func (ss *saleService) recordSaleLogic(ctx context.Context, tx *gorm.DB, medicineID uint, quantity int) (*types.SaleRecord, error) {
  medicine, err := ss.medicineRepo.LockByID(ctx, tx, medicineID)
  if err != nil {
    return nil, err
  }
  if medicine == nil {
    return nil, errordata.New(errordata.KindNotFound, "Medicine not found")
  }
  if medicine.StockQuantity < quantity {
    return nil, errordata.New(errordata.KindInsufficientStock,
      fmt.Sprintf("Insufficient stock for %s: %d available", medicine.Name, medicine.StockQuantity))
  }
  medicine.StockQuantity -= quantity
  if err := ss.medicineRepo.SetStock(ctx, tx, medicine.ID, medicine.StockQuantity); err != nil {
    return nil, fmt.Errorf("failed to decrement stock: %w", err)
  }
  sale := &types.SaleRecord{
    MedicineID:   medicine.ID,
    QuantitySold: quantity,
    Timestamp:    time.Now().UTC(),
  }
  if _, err := ss.saleRecordRepo.Create(ctx, tx, sale); err != nil {
    return nil, fmt.Errorf("failed to create sale record: %w", err)
  }
  sale.Medicine = medicine
  return sale, nil
}

func (ss *saleService) maybeAlertLowStock(ctx context.Context, medicine *types.Medicine) {
  if medicine == nil || medicine.StockQuantity > ss.cfg.LowStockThreshold {
    return
  }
  ss.log.Warn("Medicine stock is low", "medicineID", medicine.ID, "stock", medicine.StockQuantity)
  if ss.emailService == nil || ss.cfg.AlertEmail == "" {
    return
  }
  subject := fmt.Sprintf("Low stock: %s", medicine.Name)
  body := fmt.Sprintf("%s has %d units left (threshold %d).", medicine.Name, medicine.StockQuantity, ss.cfg.LowStockThreshold)
  htmlBody := fmt.Sprintf("<p><strong>%s</strong> has %d units left (threshold %d).</p>", html.EscapeString(medicine.Name), medicine.StockQuantity, ss.cfg.LowStockThreshold)
  if err := ss.emailService.SendEmail(ctx, ss.cfg.AlertEmail, subject, body, htmlBody); err != nil {
    ss.log.Warn("Failed to send low stock alert", "medicineID", medicine.ID, "error", err)
  }
}

func (ss *saleService) RecentSales(ctx context.Context) ([]types.SaleView, error) {
  sales, err := ss.saleRecordRepo.GetRecent(ctx, nil, RecentSalesLimit)
  if err != nil {
    return nil, err
  }
  views := make([]types.SaleView, 0, len(sales))
  for _, s := range sales {
    views = append(views, types.NewSaleView(s))
  }
  return views, nil
}
