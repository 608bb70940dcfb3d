package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifiedAt(medicineID uint, scheduled time.Time, status Status) Classified {
	return Classified{
		Occurrence: Occurrence{ReminderID: 1, MedicineID: medicineID, Scheduled: scheduled},
		Status:     status,
	}
}

func TestAggregateRateSentinel(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 100, s.Rate)
	assert.Equal(t, 0, s.Total)

	// Only non-terminal occurrences: still nothing to have failed.
	s = Aggregate([]Classified{
		classifiedAt(1, at(2024, time.March, 3, 9, 0), StatusDueNow),
		classifiedAt(1, at(2024, time.March, 4, 9, 0), StatusUpcoming),
	})
	assert.Equal(t, 100, s.Rate)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 2, s.Remaining)
}

func TestAggregateRateRounding(t *testing.T) {
	s := Aggregate([]Classified{
		classifiedAt(1, at(2024, time.March, 1, 9, 0), StatusTaken),
		classifiedAt(1, at(2024, time.March, 2, 9, 0), StatusTaken),
		classifiedAt(1, at(2024, time.March, 3, 9, 0), StatusMissed),
	})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 67, s.Rate)

	s = Aggregate([]Classified{
		classifiedAt(1, at(2024, time.March, 1, 9, 0), StatusTaken),
		classifiedAt(1, at(2024, time.March, 2, 9, 0), StatusSkipped),
		classifiedAt(1, at(2024, time.March, 3, 9, 0), StatusMissed),
	})
	assert.Equal(t, 33, s.Rate)
}

func TestAggregateDaily(t *testing.T) {
	classified := []Classified{
		classifiedAt(1, at(2024, time.March, 1, 9, 0), StatusTaken),
		classifiedAt(1, at(2024, time.March, 1, 21, 0), StatusMissed),
		classifiedAt(1, at(2024, time.March, 3, 9, 0), StatusDueNow),
	}

	stats := AggregateDaily(classified, date(2024, time.March, 1), date(2024, time.March, 3))
	require.Len(t, stats, 3)

	assert.Equal(t, "2024-03-01", stats[0].Date)
	assert.Equal(t, 1, stats[0].Taken)
	assert.Equal(t, 1, stats[0].Missed)
	assert.Equal(t, 50, stats[0].Rate)

	// Day with no occurrences at all gets the sentinel rate.
	assert.Equal(t, "2024-03-02", stats[1].Date)
	assert.Equal(t, 0, stats[1].Total)
	assert.Equal(t, 100, stats[1].Rate)

	assert.Equal(t, "2024-03-03", stats[2].Date)
	assert.Equal(t, 1, stats[2].Remaining)
	assert.Equal(t, 100, stats[2].Rate)
}

func TestAggregateDailyInvertedRangeIsEmpty(t *testing.T) {
	stats := AggregateDaily(nil, date(2024, time.March, 10), date(2024, time.March, 1))
	assert.Empty(t, stats)
}

func TestAggregateByMedicine(t *testing.T) {
	classified := []Classified{
		classifiedAt(5, at(2024, time.March, 1, 9, 0), StatusTaken),
		classifiedAt(2, at(2024, time.March, 1, 13, 0), StatusMissed),
		classifiedAt(5, at(2024, time.March, 2, 9, 0), StatusTaken),
		classifiedAt(2, at(2024, time.March, 2, 13, 0), StatusTaken),
	}

	stats := AggregateByMedicine(classified)
	require.Len(t, stats, 2)
	assert.Equal(t, uint(2), stats[0].MedicineID)
	assert.Equal(t, 50, stats[0].Rate)
	assert.Equal(t, uint(5), stats[1].MedicineID)
	assert.Equal(t, 100, stats[1].Rate)
}

func TestStreak(t *testing.T) {
	today := date(2024, time.March, 10)

	build := func(days map[int]Status) []Classified {
		var out []Classified
		for day, status := range days {
			out = append(out, classifiedAt(1, at(2024, time.March, day, 9, 0), status))
		}
		return out
	}

	t.Run("unbroken run", func(t *testing.T) {
		c := build(map[int]Status{8: StatusTaken, 9: StatusTaken, 10: StatusTaken})
		assert.Equal(t, 3, Streak(c, today))
	})

	t.Run("stops at missed day", func(t *testing.T) {
		c := build(map[int]Status{7: StatusTaken, 8: StatusMissed, 9: StatusTaken, 10: StatusTaken})
		assert.Equal(t, 2, Streak(c, today))
	})

	t.Run("skipped breaks the streak too", func(t *testing.T) {
		c := build(map[int]Status{9: StatusSkipped, 10: StatusTaken})
		assert.Equal(t, 1, Streak(c, today))
	})

	t.Run("stops at day with nothing scheduled", func(t *testing.T) {
		c := build(map[int]Status{7: StatusTaken, 8: StatusTaken, 10: StatusTaken})
		assert.Equal(t, 1, Streak(c, today))
	})

	t.Run("today pending still counts", func(t *testing.T) {
		c := build(map[int]Status{9: StatusTaken, 10: StatusDueNow})
		assert.Equal(t, 2, Streak(c, today))
	})

	t.Run("nothing scheduled today", func(t *testing.T) {
		c := build(map[int]Status{9: StatusTaken})
		assert.Equal(t, 0, Streak(c, today))
	})
}
