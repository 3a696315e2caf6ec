package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealth_StartsRunning(t *testing.T) {
	h := NewHealth(3 * time.Hour)
	now := time.Now()

	assert.Equal(t, StateRunning, h.StateAt(now))
	assert.True(t, h.IsAlive(now))
	assert.False(t, h.Stopped())
}

func TestHealth_GraceWindow(t *testing.T) {
	grace := 3 * time.Hour
	failedAt := time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)

	h := NewHealth(grace)
	h.MarkDegraded(failedAt)

	t.Run("alive within the window", func(t *testing.T) {
		within := failedAt.Add(grace - time.Minute)
		assert.Equal(t, StateGrace, h.StateAt(within))
		assert.True(t, h.IsAlive(within))
	})

	t.Run("down once the window elapses", func(t *testing.T) {
		after := failedAt.Add(grace)
		assert.Equal(t, StateDown, h.StateAt(after))
		assert.False(t, h.IsAlive(after))
	})
}

func TestHealth_FirstFailureWins(t *testing.T) {
	grace := 3 * time.Hour
	first := time.Date(2024, time.June, 2, 10, 0, 0, 0, time.UTC)

	h := NewHealth(grace)
	h.MarkDegraded(first)
	// A later failure must not restart the window.
	h.MarkDegraded(first.Add(2 * time.Hour))

	assert.Equal(t, StateDown, h.StateAt(first.Add(grace)))
}

func TestHealth_DegradedAtConstruction(t *testing.T) {
	grace := 3 * time.Hour
	now := time.Now()

	t.Run("old failure reports down", func(t *testing.T) {
		h := NewHealthDegradedAt(now.Add(-grace-time.Minute), grace)
		assert.Equal(t, StateDown, h.StateAt(now))
	})

	t.Run("recent failure reports grace", func(t *testing.T) {
		h := NewHealthDegradedAt(now.Add(-time.Minute), grace)
		assert.Equal(t, StateGrace, h.StateAt(now))
	})
}

func TestHealth_Stopped(t *testing.T) {
	h := NewHealth(time.Hour)
	h.MarkStopped()
	assert.True(t, h.Stopped())
}
