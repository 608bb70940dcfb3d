package schedule

import "time"

// Generate resolves whether the rule fires on the given calendar date and, if
// so, returns the occurrence with its scheduled datetime (date + time-of-day).
// Dates before the validity start, after the validity end, or on an inactive
// rule yield no occurrence. The only error case is an out-of-enum frequency.
func (r Rule) Generate(date time.Time) (Occurrence, bool, error) {
	fires, err := r.firesOn(date)
	if err != nil || !fires {
		return Occurrence{}, false, err
	}
	return Occurrence{
		ReminderID: r.ReminderID,
		MedicineID: r.MedicineID,
		Scheduled:  time.Date(date.Year(), date.Month(), date.Day(), r.Hour, r.Minute, 0, 0, date.Location()),
	}, true, nil
}

// GenerateRange expands the rule over [start, end] inclusive, in ascending
// date order. The result is defined to be identical to calling Generate once
// per date in the range. An inverted range yields an empty slice.
func (r Rule) GenerateRange(start, end time.Time) ([]Occurrence, error) {
	var occs []Occurrence
	for d := DateOf(start); !d.After(DateOf(end)); d = d.AddDate(0, 0, 1) {
		occ, ok, err := r.Generate(d)
		if err != nil {
			return nil, err
		}
		if ok {
			occs = append(occs, occ)
		}
	}
	return occs, nil
}

func (r Rule) firesOn(date time.Time) (bool, error) {
	if !r.Active {
		return false, nil
	}
	day := DateOf(date)
	if day.Before(DateOf(r.StartDate)) {
		return false, nil
	}
	if r.EndDate != nil && day.After(DateOf(*r.EndDate)) {
		return false, nil
	}

	switch r.Frequency {
	case FreqDaily:
		return true, nil
	case FreqSpecificDays:
		// An empty weekday set is a degenerate rule, not an error.
		for _, wd := range r.Weekdays {
			if day.Weekday() == wd {
				return true, nil
			}
		}
		return false, nil
	case FreqInterval:
		if r.IntervalDays < 1 {
			return false, nil
		}
		return daysBetween(r.StartDate, day)%r.IntervalDays == 0, nil
	default:
		return false, ErrBadFrequency
	}
}
