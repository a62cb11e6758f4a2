package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type OtpRecord struct {
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  PhoneNumber         string                    `gorm:"uniqueIndex;not null;column:phone_number" json:"phone_number"`
  Code                string                    `gorm:"not null;column:code" json:"-"`
  IsVerified          bool                      `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
  ExpiresAt           time.Time                 `gorm:"not null;index;column:expires_at" json:"expires_at"`
  CreatedAt           time.Time                 `gorm:"not null" json:"created_at"`
}

func (OtpRecord) TableName() string {
  return "otp_record"
}

func (r *OtpRecord) BeforeCreate(tx *gorm.DB) error {
  newIDIfNil(&r.ID)
  return nil
}

func (r *OtpRecord) IsExpired(now time.Time) bool {
  return now.After(r.ExpiresAt)
}
