package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/seed/catalog"
)

// SeedAll syncs the catalog file at catalogSeedPathJSON. An empty path skips seeding.
func SeedAll(
	ctx                 context.Context,
	db                  *gorm.DB,
	log                 *logger.Logger,
	doctorRepo          repos.DoctorRepo,
	medicineRepo        repos.MedicineRepo,
	catalogSeedPathJSON string,
) error {
	if catalogSeedPathJSON == "" {
		log.Info("No catalog seed file configured, skipping seed")
		return nil
	}
	log.Info("Running SeedAll... seeding catalog", "path", catalogSeedPathJSON)

	file, err := catalog.Load(catalogSeedPathJSON)
	if err != nil {
		return err
	}
	result, err := catalog.Sync(ctx, db, doctorRepo, medicineRepo, file)
	if err != nil {
		return fmt.Errorf("failed to sync catalog: %w", err)
	}

	log.Info("SeedAll Complete!",
		"doctorsCreated", result.DoctorsCreated,
		"doctorsUpdated", result.DoctorsUpdated,
		"medicinesCreated", result.MedicinesCreated,
		"medicinesUpdated", result.MedicinesUpdated,
	)
	return nil
}
