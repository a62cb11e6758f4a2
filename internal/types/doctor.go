package types

import (
  "time"
)

type Doctor struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  Name                string                    `gorm:"not null;column:name" json:"name"`
  Specialty           string                    `gorm:"not null;column:specialty" json:"specialty"`
  IsAvailable         bool                      `gorm:"not null;column:is_available" json:"is_available"`
  AvatarBucketKey     string                    `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key,omitempty"`
  AvatarURL           string                    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`

  CreatedAt           time.Time                 `json:"created_at"`
  UpdatedAt           time.Time                 `json:"updated_at"`
}

func (Doctor) TableName() string {
  return "doctor"
}
