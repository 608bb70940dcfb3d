package models

import "time"

// Stock change types.
const (
	StockAdded    = "added"
	StockConsumed = "consumed"
	StockAdjusted = "adjusted"
)

// InventoryHistory is an audit row for every stock change on a medicine.
type InventoryHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	MedicineID    uint      `gorm:"index;not null" json:"medicine_id"`
	ChangeAmount  int       `gorm:"not null" json:"change_amount"` // positive add, negative consume
	ChangeType    string    `gorm:"size:50;not null" json:"change_type"`
	PreviousStock int       `gorm:"not null" json:"previous_stock"`
	NewStock      int       `gorm:"not null" json:"new_stock"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}
