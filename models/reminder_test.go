package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pillio/pillio-backend/schedule"
)

func TestReminderRuleConversion(t *testing.T) {
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.Local)
	rem := Reminder{
		ID:           7,
		MedicineID:   3,
		ReminderTime: "08:30",
		Frequency:    "specific_days",
		SpecificDays: "[1,3,5]",
		StartDate:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
		EndDate:      &end,
		IsActive:     true,
	}

	rule, err := rem.Rule()
	require.NoError(t, err)
	assert.Equal(t, uint(7), rule.ReminderID)
	assert.Equal(t, uint(3), rule.MedicineID)
	assert.Equal(t, 8, rule.Hour)
	assert.Equal(t, 30, rule.Minute)
	assert.Equal(t, schedule.FreqSpecificDays, rule.Frequency)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, rule.Weekdays)
	assert.True(t, rule.Active)
}

func TestReminderRuleRejectsBadRows(t *testing.T) {
	cases := map[string]Reminder{
		"bad frequency": {ReminderTime: "08:00", Frequency: "hourly"},
		"bad clock":     {ReminderTime: "25:99", Frequency: "daily"},
		"bad weekdays":  {ReminderTime: "08:00", Frequency: "specific_days", SpecificDays: "[9]"},
		"bad json":      {ReminderTime: "08:00", Frequency: "specific_days", SpecificDays: "mon,tue"},
	}
	for name, rem := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := rem.Rule()
			assert.Error(t, err)
		})
	}
}

func TestWeekdaysEmptyColumn(t *testing.T) {
	rem := Reminder{Frequency: "specific_days", ReminderTime: "09:00", IsActive: true}
	days, err := rem.Weekdays()
	require.NoError(t, err)
	assert.Empty(t, days)

	rule, err := rem.Rule()
	require.NoError(t, err)
	assert.Empty(t, rule.Weekdays)
}

func TestEncodeWeekdays(t *testing.T) {
	s, err := EncodeWeekdays([]int{0, 6})
	require.NoError(t, err)
	assert.Equal(t, "[0,6]", s)

	_, err = EncodeWeekdays([]int{7})
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("23:45")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 45, m)

	_, _, err = ParseClock("8:00am")
	assert.Error(t, err)
}
