package utils

import (
	"context"
	"testing"

	"github.com/medicare-pharmacy/medicare-backend/internal/errordata"
	"github.com/medicare-pharmacy/medicare-backend/internal/logger"
	"github.com/medicare-pharmacy/medicare-backend/internal/types"
)

func TestHashPassword_RoundTrips(t *testing.T) {
	u := &types.AdminUser{Username: "admin", Password: "s3cret-pass"}
	if err := HashPassword(context.Background(), logger.NewNop(), u); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if u.Password == "s3cret-pass" {
		t.Fatal("password was not hashed")
	}
	if !CheckPassword(u.Password, "s3cret-pass") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(u.Password, "wrong") {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestAdminInputValidation(t *testing.T) {
	log := logger.NewNop()
	ctx := context.Background()
	if err := AdminInputValidation(ctx, log, "login", "", "x"); !errordata.Is(err, errordata.KindInvalidInput) {
		t.Errorf("empty username: got %v", err)
	}
	if err := AdminInputValidation(ctx, log, "registration", "admin", "short"); !errordata.Is(err, errordata.KindInvalidInput) {
		t.Errorf("short password: got %v", err)
	}
	if err := AdminInputValidation(ctx, log, "login", "admin", "short"); err != nil {
		t.Errorf("login should not enforce length: %v", err)
	}
}
