package jobs

import (
  "context"
  "time"

  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/repos"
  "github.com/medicare-pharmacy/medicare-backend/internal/services"
)

const DefaultCleanupInterval = 5 * time.Minute

type CleanupResult struct {
  OtpRecordsDeleted   int64
  TokensDeleted       int64
}

// Cleaner periodically deletes expired OTP records and expired access tokens.
type Cleaner struct {
  log             *logger.Logger
  otpService      services.OtpService
  userTokenRepo   repos.UserTokenRepo
  interval        time.Duration
  now             func() time.Time
}

func NewCleaner(log *logger.Logger, otpService services.OtpService, userTokenRepo repos.UserTokenRepo, interval time.Duration) *Cleaner {
  if interval <= 0 {
    interval = DefaultCleanupInterval
  }
  return &Cleaner{
    log:            log.With("job", "Cleaner"),
    otpService:     otpService,
    userTokenRepo:  userTokenRepo,
    interval:       interval,
    now:            time.Now,
  }
}

// Run blocks until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
  ticker := time.NewTicker(c.interval)
  defer ticker.Stop()

  c.log.Info("Cleanup job started", "interval", c.interval)
  for {
    select {
    case <-ctx.Done():
      c.log.Info("Cleanup job stopped")
      return
    case <-ticker.C:
      if _, err := c.RunOnce(ctx); err != nil {
        c.log.Warn("Cleanup pass failed", "error", err)
      }
    }
  }
}

func (c *Cleaner) RunOnce(ctx context.Context) (CleanupResult, error) {
  var result CleanupResult

  otpDeleted, err := c.otpService.PurgeExpired(ctx)
  if err != nil {
    return result, err
  }
  result.OtpRecordsDeleted = otpDeleted

  if c.userTokenRepo != nil {
    tokensDeleted, err := c.userTokenRepo.DeleteExpired(ctx, nil, c.now().UTC())
    if err != nil {
      return result, err
    }
    result.TokensDeleted = tokensDeleted
  }

  if result.OtpRecordsDeleted > 0 || result.TokensDeleted > 0 {
    c.log.Info("Cleanup pass complete", "otpRecordsDeleted", result.OtpRecordsDeleted, "tokensDeleted", result.TokensDeleted)
  }
  return result, nil
}
