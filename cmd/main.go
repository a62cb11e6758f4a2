package main

import (
  "context"
  "errors"
  "fmt"
  "net/http"
  "os"
  "os/signal"
  "syscall"
  "time"

  "github.com/joho/godotenv"
  "gorm.io/gorm"

  "github.com/medicare-pharmacy/medicare-backend/internal/db"
  "github.com/medicare-pharmacy/medicare-backend/internal/handlers"
  "github.com/medicare-pharmacy/medicare-backend/internal/jobs"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/middleware"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/seed"
  "github.com/medicare-pharmacy/medicare-backend/internal/server"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
  "github.com/medicare-pharmacy/medicare-backend/internal/socket"
  "github.com/medicare-pharmacy/medicare-backend/internal/utils"
)

func main() {
  // .env is optional
  _ = godotenv.Load()

  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
  defer stop()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  port := utils.GetEnv("PORT", "8080", log)
  dbDriver := utils.GetEnv("DB_DRIVER", "postgres", log)
  sqlitePath := utils.GetEnv("SQLITE_PATH", "medicare.db", log)
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
  otpTTLMinutes := utils.GetEnvAsInt("OTP_TTL_MINUTES", 10, log)
  otpPurgeInterval := utils.GetEnvAsInt("OTP_PURGE_INTERVAL_SECONDS", 300, log)
  notifierTimeout := utils.GetEnvAsInt("NOTIFIER_TIMEOUT_SECONDS", 10, log)
  smsCountryCode := utils.GetEnv("SMS_COUNTRY_CODE", "91", log)
  clinicName := utils.GetEnv("CLINIC_NAME", "MediCare Pharmacy", log)
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  sendgridAPIKey := utils.GetEnv("SENDGRID_API_KEY", "", log)
  sendgridFromEmail := utils.GetEnv("SENDGRID_ALERT_EMAIL", "", log)
  stockAlertEmail := utils.GetEnv("STOCK_ALERT_EMAIL", "", log)
  lowStockThreshold := utils.GetEnvAsInt("LOW_STOCK_THRESHOLD", 5, log)
  gcsBucketName := utils.GetEnv("GCS_BUCKET_NAME", "", log)
  gcsCredentialsPath := utils.GetEnv("GCS_CREDENTIALS_PATH", "", log)
  avatarFont := utils.GetEnv("AVATAR_FONT", "", log)
  avatarColorsPath := utils.GetEnv("AVATAR_COLORS_JSON_PATH", "", log)
  catalogSeedPath := utils.GetEnv("SEED_CATALOG_JSON_PATH", "", log)
  allowedOrigins := utils.GetEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}, log)
  log.Debug("Environment variables loaded for Main :)",
    "port", port,
    "dbDriver", dbDriver,
    "accessTokenTTL", accessTokenTTL,
    "otpTTLMinutes", otpTTLMinutes,
    "redisAddress", redisAddress,
    "allowedOrigins", allowedOrigins,
  )
  if jwtSecretKey == "defaultsecret" {
    log.Warn("JWT_SECRET_KEY is not set, using an insecure default")
  }

  // Database Setup
  log.Info("Setting Up Database from Main now...", "driver", dbDriver)
  theDB, err := openDatabase(log, dbDriver, sqlitePath)
  if err != nil {
    log.Error("Fatal error: Cannot open database", "error", err)
    os.Exit(1)
  }
  log.Info("Database Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  otpRecordRepo := repos.NewOtpRecordRepo(theDB, log)
  appointmentRepo := repos.NewAppointmentRepo(theDB, log)
  doctorRepo := repos.NewDoctorRepo(theDB, log)
  medicineRepo := repos.NewMedicineRepo(theDB, log)
  saleRecordRepo := repos.NewSaleRecordRepo(theDB, log)
  customerRepo := repos.NewCustomerRepo(theDB, log)
  adminUserRepo := repos.NewAdminUserRepo(theDB, log)
  userTokenRepo := repos.NewUserTokenRepo(theDB, log)
  notificationRepo := repos.NewNotificationRepo(theDB, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Seed Setup
  log.Info("Attempting to Seed The Database From Main now...")
  if err := seed.SeedAll(ctx, theDB, log, doctorRepo, medicineRepo, catalogSeedPath); err != nil {
    log.Warn("Failed to seed data :(", "error", err)
  }

  // Websocket Setup
  log.Info("Setting Up Websocket Hub From Main Now :)")
  wsHub := socket.NewHub(log, socket.SalesFeedChannel)

  // Redis PubSub
  var redisPubSub *socket.RedisPubSub
  if redisAddress != "" {
    log.Info("Setting Up Redis PubSub From Main Now :)")
    redisPubSub, err = socket.NewRedisPubSub(log, redisAddress, redisPassword, "medicare_hub_broadcast")
    if err != nil {
      log.Warn("Failed to init redis pubsub", "error", err)
      redisPubSub = nil
    } else if err := redisPubSub.StartSubscriber(wsHub); err != nil {
      log.Warn("Failed to subscribe to Redis pub/sub", "error", err)
      redisPubSub.Stop()
      redisPubSub = nil
    } else {
      wsHub.SetRedisPubSub(redisPubSub)
      log.Info("Redis pubsub is active!")
    }
  }

  // Services Setup
  log.Info("Setting up Services from Main now...")
  textService, err := services.NewTextService(log, time.Duration(notifierTimeout)*time.Second)
  if err != nil {
    log.Warn("Twilio not configured, SMS will only be logged", "error", err)
    textService = services.NewLogTextService(log)
  }
  notifier := services.NewSMSNotifier(log, textService, notificationRepo, services.NotifierConfig{
    ClinicName:    clinicName,
    CountryCode:   smsCountryCode,
    OtpTTLMinutes: otpTTLMinutes,
    Timeout:       time.Duration(notifierTimeout) * time.Second,
  })

  var emailService services.EmailService
  if sendgridAPIKey != "" {
    emailService, err = services.NewEmailService(log, sendgridAPIKey, sendgridFromEmail, clinicName)
    if err != nil {
      log.Warn("Could not init EmailService", "error", err)
      emailService = nil
    }
  }

  var bucketService services.BucketService
  if gcsBucketName != "" {
    bucketService, err = services.NewBucketService(ctx, log, gcsBucketName, gcsCredentialsPath)
    if err != nil {
      log.Warn("Could not init BucketService", "error", err)
      bucketService = nil
    }
  }
  avatarService, err := services.NewAvatarService(log, bucketService, avatarColorsPath, avatarFont)
  if err != nil {
    log.Error("Fatal error: Cannot init AvatarService", "error", err)
    os.Exit(1)
  }

  otpService := services.NewOtpService(theDB, log, otpRecordRepo, notifier, services.OtpServiceConfig{
    TTL: time.Duration(otpTTLMinutes) * time.Minute,
  })
  authService := services.NewAuthService(theDB, log, adminUserRepo, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
  appointmentService := services.NewAppointmentService(theDB, log, otpRecordRepo, appointmentRepo, doctorRepo, notifier)
  customerService := services.NewCustomerService(theDB, log, customerRepo, appointmentRepo, otpService, authService)
  doctorService := services.NewDoctorService(theDB, log, doctorRepo, avatarService)
  medicineService := services.NewMedicineService(theDB, log, medicineRepo, bucketService)
  saleService := services.NewSaleService(theDB, log, medicineRepo, saleRecordRepo, socket.NewSalesFeed(wsHub), emailService, services.SaleServiceConfig{
    LowStockThreshold: lowStockThreshold,
    AlertEmail:        stockAlertEmail,
  })
  log.Info("Services Set Up From Main Successful :)")

  // Jobs Setup
  cleaner := jobs.NewCleaner(log, otpService, userTokenRepo, time.Duration(otpPurgeInterval)*time.Second)
  go cleaner.Run(ctx)

  //  Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  router := server.NewRouter(server.RouterConfig{
    AllowedOrigins:     allowedOrigins,
    AuthMiddleware:     middleware.NewAuthMiddleware(log, authService),
    AuthHandler:        handlers.NewAuthHandler(log, authService),
    OtpHandler:         handlers.NewOtpHandler(log, otpService),
    AppointmentHandler: handlers.NewAppointmentHandler(log, appointmentService),
    CustomerHandler:    handlers.NewCustomerHandler(log, customerService),
    DoctorHandler:      handlers.NewDoctorHandler(log, doctorService),
    MedicineHandler:    handlers.NewMedicineHandler(log, medicineService),
    SaleHandler:        handlers.NewSaleHandler(log, saleService),
    WsHandler:          handlers.WsHandler(wsHub, log, allowedOrigins, socket.SalesFeedChannel),
  })
  log.Info("Router Set Up From Main Successful :)")

  srv := &http.Server{
    Addr:              ":" + port,
    Handler:           router,
    ReadHeaderTimeout: 10 * time.Second,
  }
  go func() {
    log.Info("Server listening", "port", port)
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
      log.Error("Server failed", "error", err)
      stop()
    }
  }()

  <-ctx.Done()
  log.Info("Shutting down...")

  // On Shutdown
  shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
  defer cancel()
  if err := srv.Shutdown(shutdownCtx); err != nil {
    log.Warn("Server shutdown failed", "error", err)
  }
  if redisPubSub != nil {
    redisPubSub.Stop()
  }
}

func openDatabase(log *logger.Logger, driver, sqlitePath string) (*gorm.DB, error) {
  if driver == "sqlite" {
    return db.NewSQLite(sqlitePath, log)
  }
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    return nil, err
  }
  if err := postgresService.AutoMigrateAll(); err != nil {
    return nil, err
  }
  return postgresService.DB(), nil
}
