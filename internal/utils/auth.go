package utils

import (
  "context"
  "fmt"

  "golang.org/x/crypto/bcrypt"

  "github.com/medicare-pharmacy/medicare-backend/internal/errordata"
  "github.com/medicare-pharmacy/medicare-backend/internal/logger"
  "github.com/medicare-pharmacy/medicare-backend/internal/normalization"
  "github.com/medicare-pharmacy/medicare-backend/internal/types"
)

const MinPasswordLength = 8

func AdminInputValidation(ctx context.Context, log *logger.Logger, ffor, username, password string) error {
  //1) Check Username
  if username == "" {
    log.Warn("Username is an empty string, cannot proceed.", "for", ffor)
    return errordata.New(errordata.KindInvalidInput, "Username and password are required")
  }

  //2) Check Password
  if password == "" {
    log.Warn("Password is an empty string, cannot proceed.", "for", ffor)
    return errordata.New(errordata.KindInvalidInput, "Username and password are required")
  }
  if ffor == "registration" && len(password) < MinPasswordLength {
    log.Warn("Password too short for registration.", "username", username)
    return errordata.New(errordata.KindInvalidInput, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
  }
  return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.AdminUser) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    log.Warn("Failure to hash password for admin user. Returning error", "username", user.Username)
    return fmt.Errorf("failed to hash password: %w", err)
  }
  user.Password = string(hashedPassword)
  return nil
}

func CheckPassword(hashed, plain string) bool {
  return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func NormalizeAdminFields(ctx context.Context, user *types.AdminUser) {
  user.Username = normalization.ParseInputString(user.Username)
  user.Password = normalization.ParseInputString(user.Password)
}
