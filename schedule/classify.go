package schedule

import "time"

// Classify resolves the lifecycle status of one occurrence. A persisted log is
// authoritative and overrides any time-based inference; without one the status
// is derived from the scheduled time relative to now.
//
// Grace window: an unanswered occurrence stays due_now until the end of its
// scheduled calendar day. From the next day onward it is missed (a derived
// state until the sweep persists it).
//
// The function is pure: callers supply now explicitly, it never reads the
// wall clock.
func Classify(occ Occurrence, log *LogEntry, now time.Time) Classified {
	if log != nil {
		return Classified{Occurrence: occ, Status: log.Status}
	}
	switch {
	case occ.Scheduled.After(now):
		return Classified{Occurrence: occ, Status: StatusUpcoming}
	case SameDay(occ.Scheduled, now):
		return Classified{Occurrence: occ, Status: StatusDueNow}
	default:
		return Classified{Occurrence: occ, Status: StatusMissed}
	}
}

// ClassifyAll classifies a batch of occurrences against a log lookup table,
// preserving input order.
func ClassifyAll(occs []Occurrence, logs map[LogKey]LogEntry, now time.Time) []Classified {
	out := make([]Classified, 0, len(occs))
	for _, occ := range occs {
		var entry *LogEntry
		if log, ok := logs[occ.Key()]; ok {
			entry = &log
		}
		out = append(out, Classify(occ, entry, now))
	}
	return out
}
