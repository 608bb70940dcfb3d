package models

import "time"

// Notification types produced by the backend.
const (
	NotificationLowStock        = "low_stock"
	NotificationAdherenceStreak = "adherence_streak"
	NotificationMissedDose      = "missed_dose"
)

// Notification is an in-app message for a user.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Type          string    `gorm:"size:50;not null" json:"type"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	IsRead        bool      `gorm:"default:false;not null" json:"is_read"`
	ReferenceID   *uint     `json:"reference_id"`
	ReferenceType string    `gorm:"size:50" json:"reference_type"`
	CreatedAt     time.Time `json:"created_at"`
}
