package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func dailyRule(start time.Time, end *time.Time) Rule {
	return Rule{
		ReminderID: 1,
		MedicineID: 10,
		Hour:       8,
		Minute:     30,
		Frequency:  FreqDaily,
		StartDate:  start,
		EndDate:    end,
		Active:     true,
	}
}

func TestGenerateDailyCoversEveryDate(t *testing.T) {
	start := date(2024, time.January, 1)
	end := date(2024, time.January, 10)
	rule := dailyRule(start, &end)

	occs, err := rule.GenerateRange(start, end)
	require.NoError(t, err)
	require.Len(t, occs, 10)

	for i, occ := range occs {
		want := time.Date(2024, time.January, 1+i, 8, 30, 0, 0, time.Local)
		assert.Equal(t, want, occ.Scheduled)
		assert.Equal(t, uint(1), occ.ReminderID)
		assert.Equal(t, uint(10), occ.MedicineID)
	}
}

func TestGenerateSpecificDays(t *testing.T) {
	rule := dailyRule(date(2024, time.January, 1), nil)
	rule.Frequency = FreqSpecificDays
	rule.Weekdays = []time.Weekday{time.Monday, time.Wednesday}

	// 2024-01-01 is a Monday; any 14-day window yields exactly 4 occurrences.
	occs, err := rule.GenerateRange(date(2024, time.January, 1), date(2024, time.January, 14))
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for _, occ := range occs {
		wd := occ.Scheduled.Weekday()
		assert.True(t, wd == time.Monday || wd == time.Wednesday, "unexpected weekday %v", wd)
	}
}

func TestGenerateSpecificDaysEmptySetIsDisabled(t *testing.T) {
	rule := dailyRule(date(2024, time.January, 1), nil)
	rule.Frequency = FreqSpecificDays
	rule.Weekdays = nil

	occs, err := rule.GenerateRange(date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestGenerateInterval(t *testing.T) {
	rule := dailyRule(date(2024, time.January, 1), nil)
	rule.Frequency = FreqInterval
	rule.IntervalDays = 3

	occs, err := rule.GenerateRange(date(2024, time.January, 1), date(2024, time.January, 10))
	require.NoError(t, err)
	require.Len(t, occs, 4)
	for i, day := range []int{1, 4, 7, 10} {
		assert.Equal(t, day, occs[i].Scheduled.Day())
	}

	_, ok, err := rule.Generate(date(2024, time.January, 3))
	require.NoError(t, err)
	assert.False(t, ok)

	// Dates before the anchor never fire, even when the offset is a multiple.
	_, ok, err = rule.Generate(date(2023, time.December, 29))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateRangeEquivalence(t *testing.T) {
	end := date(2024, time.February, 15)
	rules := map[string]Rule{
		"daily": dailyRule(date(2024, time.January, 20), &end),
		"specific_days": func() Rule {
			r := dailyRule(date(2024, time.January, 20), nil)
			r.Frequency = FreqSpecificDays
			r.Weekdays = []time.Weekday{time.Sunday, time.Thursday, time.Saturday}
			return r
		}(),
		"interval": func() Rule {
			r := dailyRule(date(2024, time.January, 20), &end)
			r.Frequency = FreqInterval
			r.IntervalDays = 4
			return r
		}(),
	}

	start, stop := date(2024, time.January, 10), date(2024, time.February, 20)
	for name, rule := range rules {
		t.Run(name, func(t *testing.T) {
			batch, err := rule.GenerateRange(start, stop)
			require.NoError(t, err)

			var single []Occurrence
			for d := start; !d.After(stop); d = d.AddDate(0, 0, 1) {
				occ, ok, err := rule.Generate(d)
				require.NoError(t, err)
				if ok {
					single = append(single, occ)
				}
			}
			assert.Equal(t, single, batch)
		})
	}
}

func TestGenerateValidityWindow(t *testing.T) {
	end := date(2024, time.March, 10)
	rule := dailyRule(date(2024, time.March, 5), &end)

	cases := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"before start", date(2024, time.March, 4), false},
		{"on start", date(2024, time.March, 5), true},
		{"on end", date(2024, time.March, 10), true},
		{"after end", date(2024, time.March, 11), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok, err := rule.Generate(tc.day)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestGenerateDegenerateRules(t *testing.T) {
	t.Run("inactive", func(t *testing.T) {
		rule := dailyRule(date(2024, time.January, 1), nil)
		rule.Active = false
		_, ok, err := rule.Generate(date(2024, time.January, 2))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("start after end", func(t *testing.T) {
		rule := dailyRule(date(2024, time.June, 1), datePtr(2024, time.May, 1))
		occs, err := rule.GenerateRange(date(2024, time.April, 1), date(2024, time.July, 1))
		require.NoError(t, err)
		assert.Empty(t, occs)
	})

	t.Run("inverted range", func(t *testing.T) {
		rule := dailyRule(date(2024, time.January, 1), nil)
		occs, err := rule.GenerateRange(date(2024, time.January, 10), date(2024, time.January, 1))
		require.NoError(t, err)
		assert.Empty(t, occs)
	})

	t.Run("interval below one", func(t *testing.T) {
		rule := dailyRule(date(2024, time.January, 1), nil)
		rule.Frequency = FreqInterval
		rule.IntervalDays = 0
		occs, err := rule.GenerateRange(date(2024, time.January, 1), date(2024, time.January, 10))
		require.NoError(t, err)
		assert.Empty(t, occs)
	})
}

func TestGenerateBadFrequencyFailsLoudly(t *testing.T) {
	rule := dailyRule(date(2024, time.January, 1), nil)
	rule.Frequency = Frequency(42)

	_, _, err := rule.Generate(date(2024, time.January, 2))
	require.ErrorIs(t, err, ErrBadFrequency)

	_, err = rule.GenerateRange(date(2024, time.January, 1), date(2024, time.January, 5))
	require.ErrorIs(t, err, ErrBadFrequency)
}
