package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFixedWindowAllow(t *testing.T) {
	rl := NewFixedWindowLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)

	now = now.Add(15 * time.Second)
	ok, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 45*time.Second, retry)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "limits are per client")

	now = now.Add(45 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok, "a new window starts once the old one ends")
}

func TestFixedWindowsAreStaggered(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	now = now.Add(40 * time.Second)
	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok)

	now = now.Add(30 * time.Second)
	rl.sweep()
	rl.Lock()
	_, first := rl.clients["10.0.0.1"]
	_, second := rl.clients["10.0.0.2"]
	rl.Unlock()
	assert.False(t, first, "first client's window has ended")
	assert.True(t, second, "second client's window is still open")

	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, retry := rl.Allow("10.0.0.2")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retry)
}

func TestFixedWindowStop(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 10*time.Millisecond)
	rl.Stop()
	rl.Stop()
}
