package models

import "time"

// ReminderLog records the outcome of one occurrence. The composite unique
// index enforces at most one log per (reminder, scheduled time); writing a
// second one for the same pair must be an update or an ignored insert.
type ReminderLog struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReminderID    uint       `gorm:"not null;uniqueIndex:idx_reminder_scheduled" json:"reminder_id"`
	ScheduledTime time.Time  `gorm:"not null;uniqueIndex:idx_reminder_scheduled" json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time"`
	Status        string     `gorm:"size:20;not null" json:"status"` // taken, skipped, missed
	Notes         string     `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
}
