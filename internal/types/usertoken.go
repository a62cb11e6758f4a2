package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type UserToken struct {
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey"`
  UserType            string                    `gorm:"not null;column:user_type"`
  AdminUserID         *uuid.UUID                `gorm:"index;column:admin_user_id"`
  AdminUser           *AdminUser                `gorm:"constraint:OnDelete:CASCADE;foreignKey:AdminUserID;references:ID"`
  CustomerID          *uint                     `gorm:"index;column:customer_id"`
  Customer            *Customer                 `gorm:"constraint:OnDelete:CASCADE;foreignKey:CustomerID;references:ID"`
  PhoneNumber         string                    `gorm:"column:phone_number"`

  AccessToken         string                    `gorm:"uniqueIndex;not null;column:access_token"`
  ExpiresAt           time.Time                 `gorm:"index;column:expires_at"`

  CreatedAt           time.Time
}

func (UserToken) TableName() string {
  return "user_token"
}

func (t *UserToken) BeforeCreate(tx *gorm.DB) error {
  newIDIfNil(&t.ID)
  return nil
}
