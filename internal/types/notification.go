package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
  "gorm.io/gorm"
)

type NotificationKind string

const (
  NotificationKindOtp                     NotificationKind = "otp"
  NotificationKindAppointmentConfirmation NotificationKind = "appointment_confirmation"
  NotificationKindGeneric                 NotificationKind = "generic"
)

// Notification logs one delivery attempt. The message body is not stored.
type Notification struct {
  ID                  uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
  PhoneNumber         string                    `gorm:"index;not null;column:phone_number" json:"phone_number"`
  Kind                NotificationKind          `gorm:"type:varchar(50);not null;column:kind" json:"kind"`
  Success             bool                      `gorm:"not null;column:success" json:"success"`
  ProviderMessageID   *string                   `gorm:"column:provider_message_id" json:"provider_message_id,omitempty"`
  Error               *string                   `gorm:"column:error" json:"error,omitempty"`
  Metadata            datatypes.JSONMap         `gorm:"column:metadata" json:"metadata,omitempty"`
  CreatedAt           time.Time                 `json:"created_at"`
}

func (Notification) TableName() string {
  return "notification"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
  newIDIfNil(&n.ID)
  return nil
}
