package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"
  gormlogger "gorm.io/gorm/logger"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  //1) Get and Set Environment Variables
  serviceLog.Info("Attempting to load environment variables for Postgres now...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", serviceLog)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", serviceLog)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", serviceLog)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", serviceLog)
  postgresName := utils.GetEnv("POSTGRES_NAME", "medicare", serviceLog)
  serviceLog.Debug("Environment variables loaded for Postgres",
    "host", postgresHost,
    "port", postgresPort,
    "user", postgresUser,
    "dbname", postgresName,
  )

  //2) Construct DSN From Environment Variables
  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  //3) Attempt DB Connection
  serviceLog.Info("Attempting to connect to Postgres DB now...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
    Logger: gormlogger.Default.LogMode(gormlogger.Warn),
  })
  if err != nil {
    serviceLog.Error("Failed to connect to Postgres DB", "error", err)
    return nil, fmt.Errorf("failed to connect to Postgres DB: %w", err)
  }
  serviceLog.Info("Successfully Connected to Postgres DB :)")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  return AutoMigrate(s.db, s.log)
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
