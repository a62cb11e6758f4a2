package db

import (
  "fmt"

  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

func Models() []interface{} {
  return []interface{}{
    &types.Doctor{},
    &types.Medicine{},
    &types.SaleRecord{},
    &types.Customer{},
    &types.Appointment{},
    &types.OtpRecord{},
    &types.AdminUser{},
    &types.UserToken{},
    &types.Notification{},
  }
}

type foreignKey struct {
  table      string
  name       string
  column     string
  refTable   string
  onDelete   string
}

var foreignKeys = []foreignKey{
  {"appointment", "fk_appointment_doctor_id", "doctor_id", "doctor", "CASCADE"},
  {"sale_record", "fk_sale_record_medicine_id", "medicine_id", "medicine", "CASCADE"},
  {"user_token", "fk_user_token_admin_user_id", "admin_user_id", "admin_user", "CASCADE"},
  {"user_token", "fk_user_token_customer_id", "customer_id", "customer", "CASCADE"},
}

// AutoMigrate creates or updates every table. Foreign keys are added separately and
// only on Postgres; SQLite cannot add constraints to an existing table.
func AutoMigrate(db *gorm.DB, log *logger.Logger) error {
  log.Info("Starting AutoMigrate for all GORM models now...")
  if err := db.AutoMigrate(Models()...); err != nil {
    log.Error("AutoMigrate failed :(", "error", err)
    return fmt.Errorf("auto migrate: %w", err)
  }
  log.Info("AutoMigrate completed successfully :)")

  if db.Dialector.Name() != "postgres" {
    log.Debug("Skipping foreign keys for dialect", "dialect", db.Dialector.Name())
    return nil
  }

  log.Info("Configuring Foreign Key Relationships now...")
  for _, fk := range foreignKeys {
    if db.Migrator().HasConstraint(fk.table, fk.name) {
      log.Debug("Foreign key already exists", "constraint", fk.name)
      continue
    }
    stmt := fmt.Sprintf(`
      ALTER TABLE %q
      ADD CONSTRAINT %q
      FOREIGN KEY (%q)
      REFERENCES %q ("id")
      ON DELETE %s
    `, fk.table, fk.name, fk.column, fk.refTable, fk.onDelete)
    if err := db.Exec(stmt).Error; err != nil {
      return fmt.Errorf("failed to add %s: %w", fk.name, err)
    }
  }
  log.Info("Successfully Added Foreign Key Relationships :)")
  return nil
}
