package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"
)

type Appointment struct {
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  DoctorID            uint                      `gorm:"index;not null;column:doctor_id" json:"doctor_id"`
  Doctor              *Doctor                   `gorm:"constraint:OnDelete:CASCADE;foreignKey:DoctorID;references:ID" json:"doctor,omitempty"`

  CustomerName        string                    `gorm:"not null;column:customer_name" json:"customer_name"`
  PhoneNumber         string                    `gorm:"index;not null;column:phone_number" json:"phone_number"`
  ScheduledAt         time.Time                 `gorm:"not null;column:scheduled_at" json:"date"`
  IsVerified          bool                      `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
  CreatedAt           time.Time                 `gorm:"not null" json:"created_at"`
}

func (Appointment) TableName() string {
  return "appointment"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
  newIDIfNil(&a.ID)
  return nil
}
