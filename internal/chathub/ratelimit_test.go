package chathub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Internal test package so the clock can be injected.

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("s1:u1"), "message %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("s1:u1"), "11th message within the window should be rejected")
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(10, time.Minute)
	rl.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.True(t, rl.Allow("s1:u1"))
		now = now.Add(time.Second)
	}
	assert.False(t, rl.Allow("s1:u1"))

	// 61 seconds after the first message its slot has aged out.
	now = now.Add(52 * time.Second)
	assert.True(t, rl.Allow("s1:u1"), "12th message should succeed once the first aged out")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("s1:u1"))
	assert.False(t, rl.Allow("s1:u1"))
	assert.True(t, rl.Allow("s1:u2"), "different member must have its own window")
	assert.True(t, rl.Allow("s2:u1"), "same member in another session must have its own window")
}

func TestRateLimiter_ClearResetsWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("s1:u1"))
	assert.False(t, rl.Allow("s1:u1"))

	rl.Clear("s1:u1")
	assert.True(t, rl.Allow("s1:u1"), "window must reset after disconnect cleanup")
}
