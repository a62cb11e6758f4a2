package types

import (
  "strconv"
  "time"

  "gorm.io/gorm"
)

type Medicine struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  Name                string                    `gorm:"not null;column:name" json:"name"`
  Description         string                    `gorm:"type:text;column:description" json:"description"`
  StockQuantity       int                       `gorm:"not null;default:0;column:stock_quantity" json:"stock_quantity"`
  // Price is a decimal string with two places, e.g. "12.50".
  Price               string                    `gorm:"type:decimal(10,2);not null;column:price" json:"price"`
  ImageBucketKey      string                    `gorm:"column:image_bucket_key" json:"image_bucket_key,omitempty"`
  ImageURL            string                    `gorm:"column:image_url" json:"image_url,omitempty"`

  CreatedAt           time.Time                 `json:"created_at"`
  UpdatedAt           time.Time                 `json:"updated_at"`
}

func (Medicine) TableName() string {
  return "medicine"
}

// AfterFind restores two decimal places. SQLite hands decimal columns back as plain numbers.
func (m *Medicine) AfterFind(tx *gorm.DB) error {
  if v, err := strconv.ParseFloat(m.Price, 64); err == nil {
    m.Price = PriceString(v)
  }
  return nil
}

func PriceString(v float64) string {
  return strconv.FormatFloat(v, 'f', 2, 64)
}
