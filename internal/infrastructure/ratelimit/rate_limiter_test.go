package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(rl *RateLimiter, t time.Time) *time.Time {
	now := t
	rl.now = func() time.Time { return now }
	return &now
}

func TestAllowHonoursBurstThenRefills(t *testing.T) {
	rl := NewRateLimiter(Per(2, time.Second))
	now := fixedClock(rl, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	ok, _ := rl.Allow("user-1", "browse")
	assert.True(t, ok)
	ok, _ = rl.Allow("user-1", "browse")
	assert.True(t, ok)

	ok, wait := rl.Allow("user-1", "browse")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	*now = now.Add(500 * time.Millisecond)
	ok, _ = rl.Allow("user-1", "browse")
	assert.True(t, ok)
}

func TestAllowIsPerKeyAndAction(t *testing.T) {
	rl := NewRateLimiter(Per(1, time.Minute))
	fixedClock(rl, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	ok, _ := rl.Allow("a", "browse")
	assert.True(t, ok)
	ok, _ = rl.Allow("a", "browse")
	assert.False(t, ok)

	ok, _ = rl.Allow("b", "browse")
	assert.True(t, ok)
	ok, _ = rl.Allow("a", ActionSendMessage)
	assert.True(t, ok)
}

func TestCreateChatPolicy(t *testing.T) {
	rl := NewRateLimiter(Per(100, time.Second))
	fixedClock(rl, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		ok, _ := rl.Allow("buyer", ActionCreateChat)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, wait := rl.Allow("buyer", ActionCreateChat)
	assert.False(t, ok)
	assert.InDelta(t, float64(12*time.Minute), float64(wait), float64(time.Millisecond))
}

func TestSweep(t *testing.T) {
	rl := NewRateLimiter(Per(1, time.Second))
	now := fixedClock(rl, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rl.Allow("old", "browse")
	*now = now.Add(2 * time.Hour)
	rl.Allow("fresh", "browse")

	assert.Equal(t, 1, rl.Sweep(time.Hour))
	assert.Len(t, rl.entries, 1)
}
