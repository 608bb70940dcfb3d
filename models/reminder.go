package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pillio/pillio-backend/schedule"
)

// Reminder is a recurring dose schedule for one medicine. Exactly one of
// SpecificDays / IntervalDays is populated, matching Frequency.
type Reminder struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	MedicineID     uint       `gorm:"index;not null" json:"medicine_id"`
	PrescriptionID *uint      `json:"prescription_id"`
	ReminderTime   string     `gorm:"size:5;not null" json:"reminder_time"` // "HH:MM", naive local time
	Frequency      string     `gorm:"size:20;not null" json:"frequency"`    // daily, specific_days, interval
	SpecificDays   string     `gorm:"size:32" json:"specific_days"`         // JSON array of 0=Sun..6=Sat
	IntervalDays   int        `json:"interval_days"`
	DosageAmount   string     `gorm:"size:20" json:"dosage_amount"`
	DosageUnit     string     `gorm:"size:50" json:"dosage_unit"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Medicine Medicine      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"medicine"`
	Logs     []ReminderLog `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Rule converts the stored row into the engine's recurrence rule.
func (r *Reminder) Rule() (schedule.Rule, error) {
	freq, err := schedule.ParseFrequency(r.Frequency)
	if err != nil {
		return schedule.Rule{}, err
	}

	hour, minute, err := ParseClock(r.ReminderTime)
	if err != nil {
		return schedule.Rule{}, err
	}

	rule := schedule.Rule{
		ReminderID:   r.ID,
		MedicineID:   r.MedicineID,
		Hour:         hour,
		Minute:       minute,
		Frequency:    freq,
		IntervalDays: r.IntervalDays,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		Active:       r.IsActive,
	}

	if freq == schedule.FreqSpecificDays {
		days, err := r.Weekdays()
		if err != nil {
			return schedule.Rule{}, err
		}
		rule.Weekdays = days
	}
	return rule, nil
}

// Weekdays decodes the stored weekday array. An empty column decodes to an
// empty set (a disabled rule, not an error).
func (r *Reminder) Weekdays() ([]time.Weekday, error) {
	if r.SpecificDays == "" {
		return nil, nil
	}
	var raw []int
	if err := json.Unmarshal([]byte(r.SpecificDays), &raw); err != nil {
		return nil, fmt.Errorf("reminder %d: bad specific_days %q: %w", r.ID, r.SpecificDays, err)
	}
	days := make([]time.Weekday, 0, len(raw))
	for _, d := range raw {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("reminder %d: weekday %d out of range", r.ID, d)
		}
		days = append(days, time.Weekday(d))
	}
	return days, nil
}

// EncodeWeekdays serializes a weekday list for the SpecificDays column.
func EncodeWeekdays(days []int) (string, error) {
	for _, d := range days {
		if d < 0 || d > 6 {
			return "", fmt.Errorf("weekday %d out of range", d)
		}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseClock parses an "HH:MM" time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("bad reminder_time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
