package types

import (
  "time"
)

type SaleRecord struct {
  ID                  uint                      `gorm:"primaryKey" json:"id"`
  MedicineID          uint                      `gorm:"index;not null;column:medicine_id" json:"medicine_id"`
  Medicine            *Medicine                 `gorm:"constraint:OnDelete:CASCADE;foreignKey:MedicineID;references:ID" json:"-"`
  QuantitySold        int                       `gorm:"not null;column:quantity_sold" json:"quantity_sold"`
  Timestamp           time.Time                 `gorm:"not null;index;column:timestamp" json:"timestamp"`
}

func (SaleRecord) TableName() string {
  return "sale_record"
}

// SaleView is the shape sales are published and listed in.
type SaleView struct {
  ID                  uint                      `json:"id"`
  MedicineID          uint                      `json:"medicine_id"`
  MedicineName        string                    `json:"medicine_name"`
  QuantitySold        int                       `json:"quantity_sold"`
  Timestamp           time.Time                 `json:"timestamp"`
}

func NewSaleView(s *SaleRecord) SaleView {
  v := SaleView{
    ID:           s.ID,
    MedicineID:   s.MedicineID,
    QuantitySold: s.QuantitySold,
    Timestamp:    s.Timestamp,
  }
  if s.Medicine != nil {
    v.MedicineName = s.Medicine.Name
  }
  return v
}
