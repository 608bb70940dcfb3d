package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreakMilestone(t *testing.T) {
	for _, m := range streakMilestones {
		assert.Equal(t, m, streakMilestone(m))
	}

	// Only the day a milestone is crossed counts, so a single notification
	// fires per milestone.
	assert.Zero(t, streakMilestone(0))
	assert.Zero(t, streakMilestone(2))
	assert.Zero(t, streakMilestone(8))
	assert.Zero(t, streakMilestone(366))
}
