package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyRoundTrip(t *testing.T) {
	for _, name := range []string{"daily", "specific_days", "interval"} {
		f, err := ParseFrequency(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.String())

		b, err := json.Marshal(f)
		require.NoError(t, err)

		var back Frequency
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, f, back)
	}

	_, err := ParseFrequency("weekly")
	require.ErrorIs(t, err, ErrBadFrequency)
}

func TestStatusRoundTrip(t *testing.T) {
	for _, name := range []string{"upcoming", "due_now", "taken", "skipped", "missed"} {
		s, err := ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())

		b, err := json.Marshal(s)
		require.NoError(t, err)
		assert.Equal(t, `"`+name+`"`, string(b))
	}

	_, err := ParseStatus("pending")
	require.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusUpcoming.Terminal())
	assert.False(t, StatusDueNow.Terminal())
	assert.True(t, StatusTaken.Terminal())
	assert.True(t, StatusSkipped.Terminal())
	assert.True(t, StatusMissed.Terminal())
}
