package sessionutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnchorClock(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	anchor := time.Date(2026, 3, 14, 20, 0, 0, 0, loc)

	c := NewAnchorClock(anchor)

	assert.Equal(t, anchor.UTC(), c.Now())
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.False(t, NewAnchorClock(time.Time{}).Now().IsZero())
}

func TestFakeClock(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	c := &FakeClock{NowFn: func() time.Time { return fixed }}
	assert.Equal(t, fixed, c.Now())
	assert.False(t, (&FakeClock{}).Now().IsZero())
}
