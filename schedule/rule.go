package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrBadFrequency indicates a reminder row carries a frequency value outside
// the closed enum. This is a data-integrity bug upstream and fails loudly.
var ErrBadFrequency = errors.New("schedule: unknown frequency")

// Frequency describes how often a reminder fires.
type Frequency int

const (
	// FreqDaily fires once per calendar day inside the validity window.
	FreqDaily Frequency = iota
	// FreqSpecificDays fires only on configured weekdays (0=Sunday..6=Saturday).
	FreqSpecificDays
	// FreqInterval fires every N days counted from the validity start date.
	FreqInterval
)

func (f Frequency) String() string {
	switch f {
	case FreqDaily:
		return "daily"
	case FreqSpecificDays:
		return "specific_days"
	case FreqInterval:
		return "interval"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// ParseFrequency maps a stored frequency string onto the enum.
func ParseFrequency(s string) (Frequency, error) {
	switch s {
	case "daily":
		return FreqDaily, nil
	case "specific_days":
		return FreqSpecificDays, nil
	case "interval":
		return FreqInterval, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrBadFrequency, s)
	}
}

// MarshalJSON writes the wire name of the frequency.
func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON reads the wire name of the frequency.
func (f *Frequency) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Status is the resolved lifecycle state of one occurrence.
type Status int

const (
	// StatusUpcoming means the scheduled time is still in the future.
	StatusUpcoming Status = iota
	// StatusDueNow means the occurrence is actionable: scheduled time has
	// passed but the grace window (end of the scheduled day) has not.
	StatusDueNow
	// StatusTaken is recorded by an explicit user action.
	StatusTaken
	// StatusSkipped is recorded by an explicit user action.
	StatusSkipped
	// StatusMissed is either derived (grace window elapsed, no log) or
	// persisted by the missed sweep.
	StatusMissed
)

func (s Status) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusDueNow:
		return "due_now"
	case StatusTaken:
		return "taken"
	case StatusSkipped:
		return "skipped"
	case StatusMissed:
		return "missed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status is absorbing: once logged it never
// changes and it counts toward adherence denominators.
func (s Status) Terminal() bool {
	return s == StatusTaken || s == StatusSkipped || s == StatusMissed
}

// ParseStatus maps a stored log status string onto the enum. Only the three
// terminal states are ever persisted.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "upcoming":
		return StatusUpcoming, nil
	case "due_now":
		return StatusDueNow, nil
	case "taken":
		return StatusTaken, nil
	case "skipped":
		return StatusSkipped, nil
	case "missed":
		return StatusMissed, nil
	default:
		return 0, fmt.Errorf("schedule: unknown status %q", s)
	}
}

// MarshalJSON writes the wire name of the status.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON reads the wire name of the status.
func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rule is the recurrence description of one reminder, detached from storage.
// All times are naive local time; no timezone conversion happens anywhere in
// this package.
type Rule struct {
	ReminderID   uint
	MedicineID   uint
	Hour         int
	Minute       int
	Frequency    Frequency
	Weekdays     []time.Weekday // only for FreqSpecificDays
	IntervalDays int            // only for FreqInterval, >= 1
	StartDate    time.Time      // inclusive, midnight
	EndDate      *time.Time     // inclusive, midnight; nil = open ended
	Active       bool
}

// Occurrence is one concrete firing of a reminder, derived on demand and
// never stored. Identity is (ReminderID, Scheduled).
type Occurrence struct {
	ReminderID uint      `json:"reminder_id"`
	MedicineID uint      `json:"medicine_id"`
	Scheduled  time.Time `json:"scheduled_time"`
}

// LogEntry is the engine-side view of a persisted reminder log.
type LogEntry struct {
	Status  Status
	TakenAt *time.Time
}

// Classified is an occurrence annotated with its resolved status.
type Classified struct {
	Occurrence
	Status Status `json:"status"`
}

// LogKey identifies the log slot for one occurrence. Matching is by exact
// (reminder id, scheduled time) equality, no fuzzy matching.
type LogKey struct {
	ReminderID uint
	Scheduled  int64 // unix seconds, avoids time.Time comparability pitfalls
}

// KeyFor builds the log lookup key for a reminder and scheduled time.
func KeyFor(reminderID uint, scheduled time.Time) LogKey {
	return LogKey{ReminderID: reminderID, Scheduled: scheduled.Unix()}
}

// Key returns the log lookup key of the occurrence.
func (o Occurrence) Key() LogKey {
	return KeyFor(o.ReminderID, o.Scheduled)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// daysBetween counts whole calendar days from a to b, ignoring clock time.
// Computed in UTC so DST transitions cannot produce off-by-one results.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}
