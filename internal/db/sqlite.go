package db

import (
  "fmt"

  "github.com/glebarez/sqlite"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
)

// NewSQLite opens a SQLite database at dsn and migrates it. It backs local
// development (DB_DRIVER=sqlite) and the test suites.
func NewSQLite(dsn string, log *logger.Logger) (*gorm.DB, error) {
  serviceLog := log.With("service", "SQLite")
  db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
    Logger: gormlogger.Default.LogMode(gormlogger.Silent),
  })
  if err != nil {
    return nil, fmt.Errorf("failed to open sqlite %q: %w", dsn, err)
  }
  sqlDB, err := db.DB()
  if err != nil {
    return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
  }
  // a single connection keeps in-memory databases alive and serializes writers
  sqlDB.SetMaxOpenConns(1)
  if err := AutoMigrate(db, serviceLog); err != nil {
    return nil, err
  }
  return db, nil
}

// NewMemory opens a private in-memory database named name.
func NewMemory(name string, log *logger.Logger) (*gorm.DB, error) {
  return NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), log)
}
