package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medicare-pharmacy/medicare-backend/internal/db"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/repos"
	"github.com/medicare-pharmacy/medicare-backend/internal/requestdata"
	"github.com/medicare-pharmacy/medicare-backend/internal/services"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

type nopNotifier struct{}

func (nopNotifier) SendOtp(ctx context.Context, phone, code string) services.DeliveryResult {
	id := "SM1"
	return services.DeliveryResult{Success: true, ProviderMessageID: &id}
}

func (nopNotifier) SendAppointmentConfirmation(ctx context.Context, phone, doctorName string, at time.Time, id uuid.UUID) services.DeliveryResult {
	return services.DeliveryResult{Success: true}
}

func (nopNotifier) SendNotification(ctx context.Context, phone, text string) services.DeliveryResult {
	return services.DeliveryResult{Success: true}
}

func TestCleaner_RunOnceDeletesExpiredRows(t *testing.T) {
	log := logger.NewNop()
	gdb, err := db.NewMemory(strings.ReplaceAll(t.Name(), "/", "_"), log)
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { sqlDB.Close() })

	now := time.Now().UTC()
	current := now
	otpRepo := repos.NewOtpRecordRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)
	otpService := services.NewOtpService(gdb, log, otpRepo, nopNotifier{}, services.OtpServiceConfig{
		Now: func() time.Time { return current },
	})
	ctx := context.Background()

	if _, err := otpService.RequestOtp(ctx, "9876543210"); err != nil {
		t.Fatalf("RequestOtp: %v", err)
	}
	if _, err := tokenRepo.Create(ctx, nil, []*types.UserToken{
		{UserType: requestdata.UserTypeAdmin, AccessToken: "expired", ExpiresAt: now.Add(-time.Minute), CreatedAt: now},
		{UserType: requestdata.UserTypeAdmin, AccessToken: "live", ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}); err != nil {
		t.Fatalf("create tokens: %v", err)
	}

	cleaner := NewCleaner(log, otpService, tokenRepo, time.Minute)
	cleaner.now = func() time.Time { return now }

	res, err := cleaner.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.OtpRecordsDeleted != 0 || res.TokensDeleted != 1 {
		t.Errorf("first pass = %+v, want only the expired token", res)
	}

	current = now.Add(services.DefaultOtpTTL + time.Minute)
	res, err = cleaner.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if res.OtpRecordsDeleted != 1 {
		t.Errorf("second pass = %+v, want the expired otp record", res)
	}
	if tok, _ := tokenRepo.GetByAccessToken(ctx, nil, "live"); tok == nil {
		t.Error("live token was deleted")
	}
}

func TestCleaner_RunStopsOnCancel(t *testing.T) {
	cleaner := NewCleaner(logger.NewNop(), nil, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cleaner.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
