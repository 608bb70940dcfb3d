package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissedWithoutLogIsIdempotent(t *testing.T) {
	now := at(2024, time.March, 3, 14, 0)
	occs := []Occurrence{
		occAt(1, at(2024, time.March, 1, 13, 0)), // missed, unlogged
		occAt(1, at(2024, time.March, 3, 13, 0)), // due_now, left alone
		occAt(1, at(2024, time.March, 5, 13, 0)), // upcoming, left alone
	}
	logs := map[LogKey]LogEntry{}

	first := MissedWithoutLog(occs, logs, now)
	require.Len(t, first, 1)
	assert.Equal(t, at(2024, time.March, 1, 13, 0), first[0].Scheduled)

	// Persisting the missed log and sweeping again yields nothing new.
	logs[first[0].Key()] = LogEntry{Status: StatusMissed}
	second := MissedWithoutLog(occs, logs, now)
	assert.Empty(t, second)
}

func TestMissedWithoutLogRespectsExistingLogs(t *testing.T) {
	now := at(2024, time.March, 10, 9, 0)
	occ := occAt(2, at(2024, time.March, 8, 13, 0))
	logs := map[LogKey]LogEntry{
		occ.Key(): {Status: StatusTaken},
	}
	assert.Empty(t, MissedWithoutLog([]Occurrence{occ}, logs, now))
}

// Mirrors the documented end-to-end flow: an every-2-days Metformin reminder
// queried over its first week, classified mid-window.
func TestEveryOtherDayReminderScenario(t *testing.T) {
	rule := Rule{
		ReminderID:   42,
		MedicineID:   7,
		Hour:         13,
		Minute:       0,
		Frequency:    FreqInterval,
		IntervalDays: 2,
		StartDate:    date(2024, time.March, 1),
		Active:       true,
	}

	occs, err := rule.GenerateRange(date(2024, time.March, 1), date(2024, time.March, 6))
	require.NoError(t, err)
	require.Len(t, occs, 3)
	assert.Equal(t, at(2024, time.March, 1, 13, 0), occs[0].Scheduled)
	assert.Equal(t, at(2024, time.March, 3, 13, 0), occs[1].Scheduled)
	assert.Equal(t, at(2024, time.March, 5, 13, 0), occs[2].Scheduled)

	now := at(2024, time.March, 3, 14, 0)
	classified := ClassifyAll(occs, nil, now)
	assert.Equal(t, StatusMissed, classified[0].Status)
	assert.Equal(t, StatusDueNow, classified[1].Status)
	assert.Equal(t, StatusUpcoming, classified[2].Status)

	// The sweep would persist exactly the 03-01 occurrence.
	missed := MissedWithoutLog(occs, nil, now)
	require.Len(t, missed, 1)
	assert.Equal(t, occs[0], missed[0])
}
