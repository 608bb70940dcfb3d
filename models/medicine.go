package models

import "time"

// Medicine is a medication tracked by a user, including its stock level.
type Medicine struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Name          string    `gorm:"size:255;not null;index" json:"name"`
	GenericName   string    `gorm:"size:255;index" json:"generic_name"`
	Dosage        string    `gorm:"size:100;not null" json:"dosage"` // e.g. "500mg", "10ml"
	Form          string    `gorm:"size:50;not null" json:"form"`    // tablet, capsule, syrup...
	Unit          string    `gorm:"size:50;not null" json:"unit"`    // pills, ml, mg...
	CurrentStock  int       `gorm:"default:0;not null" json:"current_stock"`
	MinStockAlert int       `gorm:"default:5;not null" json:"min_stock_alert"`
	Notes         string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsLowStock reports whether the stock has reached the alert threshold.
func (m *Medicine) IsLowStock() bool {
	return m.CurrentStock <= m.MinStockAlert
}
