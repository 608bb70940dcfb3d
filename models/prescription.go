package models

import "time"

// Prescription records the medical authorization behind one or more
// medicines. It is referenced by reminders but owns neither.
type Prescription struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"user_id"`
	DoctorName       string     `gorm:"size:255;not null" json:"doctor_name"`
	HospitalClinic   string     `gorm:"size:255" json:"hospital_clinic"`
	PrescriptionDate time.Time  `gorm:"not null" json:"prescription_date"`
	ValidUntil       *time.Time `json:"valid_until"`
	Notes            string     `gorm:"type:text" json:"notes"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Medicines []PrescriptionMedicine `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"medicines"`
}

// IsExpired reports whether the prescription's validity has passed.
func (p *Prescription) IsExpired(now time.Time) bool {
	return p.ValidUntil != nil && p.ValidUntil.Before(now)
}
