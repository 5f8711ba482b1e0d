package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVersionClock_StrictlyIncreasing(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewVersionClock(func() time.Time { return now })

	first := clock.Next(0)
	assert.Equal(t, now.UnixNano(), first)

	second := clock.Next(0)
	assert.Equal(t, first+1, second, "a frozen clock still never repeats")

	assert.Equal(t, now.UnixNano()+100, clock.Next(now.UnixNano()+99))
}

func TestVersionClock_Observe(t *testing.T) {
	clock := NewVersionClock(func() time.Time { return time.Unix(0, 10) })

	clock.Observe(500)
	assert.Equal(t, int64(501), clock.Next(0))

	clock.Observe(3)
	assert.Equal(t, int64(502), clock.Next(0))
}
