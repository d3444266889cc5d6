package sessionutil

import "time"

// Clock abstracts the current time for services and parsers.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

// AnchorClock always returns the anchor. Relative input such as
// "in 20 minutes" is resolved against the time the client sent it, even if
// the message is processed later after a retry.
type AnchorClock struct {
	anchor time.Time
}

// NewAnchorClock returns an AnchorClock. A zero anchor uses the current time.
func NewAnchorClock(t time.Time) AnchorClock {
	if t.IsZero() {
		return AnchorClock{anchor: time.Now().UTC()}
	}
	return AnchorClock{anchor: t.UTC()}
}

func (c AnchorClock) Now() time.Time { return c.anchor }

// FakeClock is a test clock.
type FakeClock struct {
	NowFn func() time.Time
}

func (f *FakeClock) Now() time.Time {
	if f.NowFn != nil {
		return f.NowFn()
	}
	return time.Now().UTC()
}
