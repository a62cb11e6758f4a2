package types

import (
  "time"
)

type Customer struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  PhoneNumber         string                    `gorm:"uniqueIndex;not null;column:phone_number" json:"phone_number"`
  Name                string                    `gorm:"not null;column:name" json:"name"`
  CreatedAt           time.Time                 `json:"created_at"`
}

func (Customer) TableName() string {
  return "customer"
}
