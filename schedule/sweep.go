package schedule

import "time"

// MissedWithoutLog returns the occurrences that classify as missed and have
// no persisted log yet, preserving input order. The caller persists them with
// an insert-if-absent keyed on (reminder id, scheduled time), which keeps the
// sweep idempotent under concurrent invocations.
func MissedWithoutLog(occs []Occurrence, logs map[LogKey]LogEntry, now time.Time) []Occurrence {
	var missed []Occurrence
	for _, occ := range occs {
		if _, ok := logs[occ.Key()]; ok {
			continue
		}
		if Classify(occ, nil, now).Status == StatusMissed {
			missed = append(missed, occ)
		}
	}
	return missed
}
