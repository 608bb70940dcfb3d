package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.Local)
}

func occAt(reminderID uint, t time.Time) Occurrence {
	return Occurrence{ReminderID: reminderID, MedicineID: 1, Scheduled: t}
}

func TestClassifyWithoutLog(t *testing.T) {
	now := at(2024, time.March, 3, 14, 0)

	cases := []struct {
		name      string
		scheduled time.Time
		want      Status
	}{
		{"future day", at(2024, time.March, 5, 13, 0), StatusUpcoming},
		{"later today", at(2024, time.March, 3, 20, 0), StatusUpcoming},
		{"earlier today", at(2024, time.March, 3, 13, 0), StatusDueNow},
		{"exactly now", now, StatusDueNow},
		{"yesterday", at(2024, time.March, 2, 13, 0), StatusMissed},
		{"last week", at(2024, time.February, 25, 13, 0), StatusMissed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(occAt(1, tc.scheduled), nil, now)
			assert.Equal(t, tc.want, got.Status)
		})
	}
}

func TestClassifyLogOverridesTimeInference(t *testing.T) {
	now := at(2024, time.March, 3, 14, 0)

	// Even a future occurrence resolves to the logged status.
	future := occAt(1, at(2024, time.March, 9, 13, 0))
	got := Classify(future, &LogEntry{Status: StatusTaken}, now)
	assert.Equal(t, StatusTaken, got.Status)

	// And a long-missed one stays skipped once logged skipped.
	past := occAt(1, at(2024, time.February, 1, 13, 0))
	got = Classify(past, &LogEntry{Status: StatusSkipped}, now)
	assert.Equal(t, StatusSkipped, got.Status)
}

func TestClassifyIsDeterministic(t *testing.T) {
	now := at(2024, time.March, 3, 14, 0)
	occ := occAt(7, at(2024, time.March, 3, 9, 0))
	log := &LogEntry{Status: StatusTaken}

	for i := 0; i < 5; i++ {
		assert.Equal(t, Classify(occ, log, now), Classify(occ, log, now))
		assert.Equal(t, Classify(occ, nil, now), Classify(occ, nil, now))
	}
}

func TestClassifyAllMatchesLogsExactly(t *testing.T) {
	now := at(2024, time.March, 3, 14, 0)
	occs := []Occurrence{
		occAt(1, at(2024, time.March, 1, 13, 0)),
		occAt(1, at(2024, time.March, 2, 13, 0)),
		occAt(2, at(2024, time.March, 2, 13, 0)),
	}
	logs := map[LogKey]LogEntry{
		KeyFor(1, at(2024, time.March, 1, 13, 0)): {Status: StatusTaken},
		// Same reminder, different scheduled time: must not match 03-02.
		KeyFor(1, at(2024, time.March, 2, 14, 0)): {Status: StatusTaken},
	}

	got := ClassifyAll(occs, logs, now)
	require.Len(t, got, 3)
	assert.Equal(t, StatusTaken, got[0].Status)
	assert.Equal(t, StatusMissed, got[1].Status)
	assert.Equal(t, StatusMissed, got[2].Status)
}
