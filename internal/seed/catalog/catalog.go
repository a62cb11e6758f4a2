package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/services"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type DoctorSeed struct {
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	IsAvailable *bool  `json:"is_available"`
}

type MedicineSeed struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	StockQuantity int         `json:"stock_quantity"`
	Price         json.Number `json:"price"`
}

type File struct {
	Doctors   []DoctorSeed   `json:"doctors"`
	Medicines []MedicineSeed `json:"medicines"`
}

type SyncResult struct {
	DoctorsCreated   int
	DoctorsUpdated   int
	MedicinesCreated int
	MedicinesUpdated int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed reading catalog seed file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed unmarshaling catalog: %w", err)
	}
	return &f, nil
}

// Sync creates catalog entries missing by name and updates changed ones. Entries absent
// from the file are left alone since appointments and sales reference them.
func Sync(
	ctx          context.Context,
	db           *gorm.DB,
	doctorRepo   repos.DoctorRepo,
	medicineRepo repos.MedicineRepo,
	file         *File,
) (*SyncResult, error) {
	result := &SyncResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := syncDoctors(ctx, tx, doctorRepo, file.Doctors, result); err != nil {
			return err
		}
		return syncMedicines(ctx, tx, medicineRepo, file.Medicines, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func syncDoctors(ctx context.Context, tx *gorm.DB, doctorRepo repos.DoctorRepo, seeds []DoctorSeed, result *SyncResult) error {
	if len(seeds) == 0 {
		return nil
	}
	names := make([]string, 0, len(seeds))
	for _, s := range seeds {
		names = append(names, s.Name)
	}
	existing, err := doctorRepo.GetByNames(ctx, tx, names)
	if err != nil {
		return fmt.Errorf("failed fetching existing doctors: %w", err)
	}
	existingMap := make(map[string]*types.Doctor)
	for _, d := range existing {
		existingMap[d.Name] = d
	}
	var toCreate []*types.Doctor
	for _, s := range seeds {
		if s.Name == "" {
			return fmt.Errorf("doctor seed without a name")
		}
		available := true
		if s.IsAvailable != nil {
			available = *s.IsAvailable
		}
		ed, ok := existingMap[s.Name]
		if !ok {
			toCreate = append(toCreate, &types.Doctor{Name: s.Name, Specialty: s.Specialty, IsAvailable: available})
			continue
		}
		if ed.Specialty != s.Specialty || ed.IsAvailable != available {
			ed.Specialty = s.Specialty
			ed.IsAvailable = available
			if _, err := doctorRepo.Update(ctx, tx, ed); err != nil {
				return fmt.Errorf("failed updating doctor %q: %w", s.Name, err)
			}
			result.DoctorsUpdated++
		}
	}
	if len(toCreate) > 0 {
		if _, err := doctorRepo.Create(ctx, tx, toCreate); err != nil {
			return fmt.Errorf("failed creating doctors: %w", err)
		}
		result.DoctorsCreated = len(toCreate)
	}
	return nil
}

func syncMedicines(ctx context.Context, tx *gorm.DB, medicineRepo repos.MedicineRepo, seeds []MedicineSeed, result *SyncResult) error {
	if len(seeds) == 0 {
		return nil
	}
	names := make([]string, 0, len(seeds))
	for _, s := range seeds {
		names = append(names, s.Name)
	}
	existing, err := medicineRepo.GetByNames(ctx, tx, names)
	if err != nil {
		return fmt.Errorf("failed fetching existing medicines: %w", err)
	}
	existingMap := make(map[string]*types.Medicine)
	for _, m := range existing {
		existingMap[m.Name] = m
	}
	var toCreate []*types.Medicine
	for _, s := range seeds {
		if s.Name == "" {
			return fmt.Errorf("medicine seed without a name")
		}
		price, err := services.FormatPrice(s.Price.String())
		if err != nil {
			return fmt.Errorf("medicine %q: %w", s.Name, err)
		}
		em, ok := existingMap[s.Name]
		if !ok {
			toCreate = append(toCreate, &types.Medicine{
				Name:          s.Name,
				Description:   s.Description,
				StockQuantity: s.StockQuantity,
				Price:         price,
			})
			continue
		}
		// stock is owned by sales once the medicine exists
		if em.Description != s.Description || em.Price != price {
			em.Description = s.Description
			em.Price = price
			if _, err := medicineRepo.Update(ctx, tx, em); err != nil {
				return fmt.Errorf("failed updating medicine %q: %w", s.Name, err)
			}
			result.MedicinesUpdated++
		}
	}
	if len(toCreate) > 0 {
		if _, err := medicineRepo.Create(ctx, tx, toCreate); err != nil {
			return fmt.Errorf("failed creating medicines: %w", err)
		}
		result.MedicinesCreated = len(toCreate)
	}
	return nil
}
