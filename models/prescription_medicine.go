package models

import "time"

// PrescriptionMedicine is one line item of a prescription. A line may link to
// an inventory medicine or stand alone with just a name.
type PrescriptionMedicine struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PrescriptionID uint      `gorm:"index;not null" json:"prescription_id"`
	MedicineID     *uint     `json:"medicine_id"`
	MedicineName   string    `gorm:"size:255;not null" json:"medicine_name"`
	Dosage         string    `gorm:"size:100;not null" json:"dosage"`
	Frequency      string    `gorm:"size:100;not null" json:"frequency"`
	DurationDays   int       `gorm:"not null" json:"duration_days"`
	Instructions   string    `gorm:"type:text" json:"instructions"`
	CreatedAt      time.Time `json:"created_at"`
}
