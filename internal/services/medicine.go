package services

import (
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "strconv"

  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type MedicineInput struct {
  Name            *string         `json:"name"`
  Description     *string         `json:"description"`
  StockQuantity   *int            `json:"stock_quantity"`
  Price           *json.Number    `json:"price"`
}

type MedicineService interface {
  ListMedicines(ctx context.Context, search string) ([]*types.Medicine, error)
  GetMedicine(ctx context.Context, medicineID uint) (*types.Medicine, error)
  CreateMedicine(ctx context.Context, input MedicineInput) (*types.Medicine, error)
  UpdateMedicine(ctx context.Context, medicineID uint, input MedicineInput) (*types.Medicine, error)
  DeleteMedicine(ctx context.Context, medicineID uint) error
  UploadMedicineImage(ctx context.Context, medicineID uint, r io.Reader) (*types.Medicine, error)
}

type medicineService struct {
  db              *gorm.DB
  log             *logger.Logger
  medicineRepo    repos.MedicineRepo
  bucketService   BucketService
}

func NewMedicineService(db *gorm.DB, log *logger.Logger, medicineRepo repos.MedicineRepo, bucketService BucketService) MedicineService {
  return &medicineService{
    db:             db,
    log:            log.With("service", "MedicineService"),
    medicineRepo:   medicineRepo,
    bucketService:  bucketService,
  }
}

func (ms *medicineService) ListMedicines(ctx context.Context, search string) ([]*types.Medicine, error) {
  return ms.medicineRepo.List(ctx, nil, normalization.ParseInputString(search))
}

func (ms *medicineService) GetMedicine(ctx context.Context, medicineID uint) (*types.Medicine, error) {
  medicine, err := ms.medicineRepo.GetByID(ctx, nil, medicineID)
  if err != nil {
    return nil, err
  }
  if medicine == nil {
    return nil, errordata.New(errordata.KindNotFound, "Medicine not found")
  }
  return medicine, nil
}

func (ms *medicineService) CreateMedicine(ctx context.Context, input MedicineInput) (*types.Medicine, error) {
  medicine := &types.Medicine{}
  if err := applyMedicineInput(medicine, input); err != nil {
    return nil, err
  }
  if medicine.Name == "" || medicine.Price == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Name and price are required")
  }
  if _, err := ms.medicineRepo.Create(ctx, nil, []*types.Medicine{medicine}); err != nil {
    return nil, fmt.Errorf("failed to create medicine: %w", err)
  }
  ms.log.Info("Medicine created", "medicineID", medicine.ID)
  return medicine, nil
}

func (ms *medicineService) UpdateMedicine(ctx context.Context, medicineID uint, input MedicineInput) (*types.Medicine, error) {
  var medicine *types.Medicine
  err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, err := ms.medicineRepo.LockByID(ctx, tx, medicineID)
    if err != nil {
      return err
    }
    if found == nil {
      return errordata.New(errordata.KindNotFound, "Medicine not found")
    }
    if err := applyMedicineInput(found, input); err != nil {
      return err
    }
    if found.Name == "" {
      return errordata.New(errordata.KindInvalidInput, "Name is required")
    }
    if _, err := ms.medicineRepo.Update(ctx, tx, found); err != nil {
      return fmt.Errorf("failed to update medicine: %w", err)
    }
    medicine = found
    return nil
  })
  if err != nil {
    return nil, err
  }
  return medicine, nil
}

func (ms *medicineService) DeleteMedicine(ctx context.Context, medicineID uint) error {
  medicine, err := ms.GetMedicine(ctx, medicineID)
  if err != nil {
    return err
  }
  if _, err := ms.medicineRepo.FullDeleteByIDs(ctx, nil, []uint{medicineID}); err != nil {
    return err
  }
  if medicine.ImageBucketKey != "" && ms.bucketService != nil {
    if err := ms.bucketService.DeleteFile(ctx, medicine.ImageBucketKey); err != nil {
      ms.log.Warn("Failed to delete medicine image", "key", medicine.ImageBucketKey, "error", err)
    }
  }
  return nil
}

func (ms *medicineService) UploadMedicineImage(ctx context.Context, medicineID uint, r io.Reader) (*types.Medicine, error) {
  if ms.bucketService == nil {
    return nil, errordata.New(errordata.KindInvalidInput, "Image storage is not configured")
  }
  medicine, err := ms.GetMedicine(ctx, medicineID)
  if err != nil {
    return nil, err
  }
  buf, err := ProcessProductImage(r)
  if err != nil {
    return nil, errordata.Wrap(errordata.KindInvalidInput, "Unsupported or corrupt image", err)
  }
  bucketKey := fmt.Sprintf("medicines/%d.jpg", medicine.ID)
  if err := ms.bucketService.UploadFile(ctx, bucketKey, bytes.NewReader(buf.Bytes()), "image/jpeg"); err != nil {
    return nil, err
  }
  url := ms.bucketService.GetPublicURL(bucketKey)
  if err := ms.medicineRepo.SetImage(ctx, nil, medicine.ID, bucketKey, url); err != nil {
    return nil, err
  }
  medicine.ImageBucketKey = bucketKey
  medicine.ImageURL = url
  return medicine, nil
}

func applyMedicineInput(medicine *types.Medicine, input MedicineInput) error {
  if input.Name != nil {
    medicine.Name = normalization.ParseInputString(*input.Name)
  }
  if input.Description != nil {
    medicine.Description = normalization.ParseInputString(*input.Description)
  }
  if input.StockQuantity != nil {
    if *input.StockQuantity < 0 {
      return errordata.New(errordata.KindInvalidInput, "Stock quantity cannot be negative")
    }
    medicine.StockQuantity = *input.StockQuantity
  }
  if input.Price != nil {
    price, err := FormatPrice(input.Price.String())
    if err != nil {
      return err
    }
    medicine.Price = price
  }
  return nil
}

// FormatPrice validates a non-negative decimal and renders it with two places.
func FormatPrice(s string) (string, error) {
  v, err := strconv.ParseFloat(normalization.ParseInputString(s), 64)
  if err != nil || v < 0 {
    return "", errordata.New(errordata.KindInvalidInput, "Price must be a non-negative number")
  }
  return types.PriceString(v), nil
}
