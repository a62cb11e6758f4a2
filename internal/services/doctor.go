package services

import (
  "context"
  "fmt"

  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type DoctorInput struct {
  Name          *string   `json:"name"`
  Specialty     *string   `json:"specialty"`
  IsAvailable   *bool     `json:"is_available"`
}

type DoctorService interface {
  ListDoctors(ctx context.Context, search string) ([]*types.Doctor, error)
  GetDoctor(ctx context.Context, doctorID uint) (*types.Doctor, error)
  CreateDoctor(ctx context.Context, input DoctorInput) (*types.Doctor, error)
  UpdateDoctor(ctx context.Context, doctorID uint, input DoctorInput) (*types.Doctor, error)
  DeleteDoctor(ctx context.Context, doctorID uint) error
}

type doctorService struct {
  db              *gorm.DB
  log             *logger.Logger
  doctorRepo      repos.DoctorRepo
  avatarService   AvatarService
}

// NewDoctorService takes an optional avatarService; without it doctors get no avatar.
func NewDoctorService(db *gorm.DB, log *logger.Logger, doctorRepo repos.DoctorRepo, avatarService AvatarService) DoctorService {
  return &doctorService{
    db:             db,
    log:            log.With("service", "DoctorService"),
    doctorRepo:     doctorRepo,
    avatarService:  avatarService,
  }
}

func (ds *doctorService) ListDoctors(ctx context.Context, search string) ([]*types.Doctor, error) {
  return ds.doctorRepo.List(ctx, nil, normalization.ParseInputString(search))
}

func (ds *doctorService) GetDoctor(ctx context.Context, doctorID uint) (*types.Doctor, error) {
  doctor, err := ds.doctorRepo.GetByID(ctx, nil, doctorID)
  if err != nil {
    return nil, err
  }
  if doctor == nil {
    return nil, errordata.New(errordata.KindDoctorNotFound, "Doctor not found")
  }
  return doctor, nil
}

func (ds *doctorService) CreateDoctor(ctx context.Context, input DoctorInput) (*types.Doctor, error) {
  doctor := &types.Doctor{IsAvailable: true}
  applyDoctorInput(doctor, input)
  if doctor.Name == "" || doctor.Specialty == "" {
    return nil, errordata.New(errordata.KindInvalidInput, "Name and specialty are required")
  }

  if err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := ds.doctorRepo.Create(ctx, tx, []*types.Doctor{doctor}); err != nil {
      return fmt.Errorf("failed to create doctor: %w", err)
    }
    if ds.avatarService == nil {
      return nil
    }
    if err := ds.avatarService.CreateAndUploadDoctorAvatar(ctx, doctor); err != nil {
      // the doctor is still usable without a picture
      ds.log.Warn("Failed to create doctor avatar", "doctorID", doctor.ID, "error", err)
      return nil
    }
    if _, err := ds.doctorRepo.Update(ctx, tx, doctor); err != nil {
      return fmt.Errorf("failed to save doctor avatar: %w", err)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  ds.log.Info("Doctor created", "doctorID", doctor.ID)
  return doctor, nil
}

func (ds *doctorService) UpdateDoctor(ctx context.Context, doctorID uint, input DoctorInput) (*types.Doctor, error) {
  var doctor *types.Doctor
  err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, err := ds.doctorRepo.GetByID(ctx, tx, doctorID)
    if err != nil {
      return err
    }
    if found == nil {
      return errordata.New(errordata.KindDoctorNotFound, "Doctor not found")
    }
    applyDoctorInput(found, input)
    if found.Name == "" || found.Specialty == "" {
      return errordata.New(errordata.KindInvalidInput, "Name and specialty are required")
    }
    if _, err := ds.doctorRepo.Update(ctx, tx, found); err != nil {
      return fmt.Errorf("failed to update doctor: %w", err)
    }
    doctor = found
    return nil
  })
  if err != nil {
    return nil, err
  }
  return doctor, nil
}

func (ds *doctorService) DeleteDoctor(ctx context.Context, doctorID uint) error {
  n, err := ds.doctorRepo.FullDeleteByIDs(ctx, nil, []uint{doctorID})
  if err != nil {
    return err
  }
  if n == 0 {
    return errordata.New(errordata.KindDoctorNotFound, "Doctor not found")
  }
  return nil
}

func applyDoctorInput(doctor *types.Doctor, input DoctorInput) {
  if input.Name != nil {
    doctor.Name = normalization.ParseInputString(*input.Name)
  }
  if input.Specialty != nil {
    doctor.Specialty = normalization.ParseInputString(*input.Specialty)
  }
  if input.IsAvailable != nil {
    doctor.IsAvailable = *input.IsAvailable
  }
}
