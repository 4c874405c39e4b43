package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlidingWindowAllowsUpToMax(t *testing.T) {
	l := NewSlidingWindow(3, time.Minute)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))

	// Other keys are unaffected.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestSlidingWindowResetsAfterWindow(t *testing.T) {
	l := NewSlidingWindow(1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("k"))
}

func TestSweepDropsExpiredKeys(t *testing.T) {
	l := NewSlidingWindow(1, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("stale")
	now = now.Add(2 * time.Minute)
	l.Allow("fresh")

	l.Sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.keys, "stale")
	assert.Contains(t, l.keys, "fresh")
}
