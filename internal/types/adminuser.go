package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type AdminUser struct {
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  Username            string                    `gorm:"uniqueIndex;not null;column:username" json:"username"`
  Password            string                    `gorm:"not null;column:password" json:"-"`

  CreatedAt           time.Time                 `json:"created_at"`
  UpdatedAt           time.Time                 `json:"updated_at"`
}

func (AdminUser) TableName() string {
  return "admin_user"
}

func (u *AdminUser) BeforeCreate(tx *gorm.DB) error {
  newIDIfNil(&u.ID)
  return nil
}
