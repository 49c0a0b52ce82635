package clock

import "time"

// Clock tells the current time. Turn deadlines and timestamps go through it
// so tests can move time deliberately.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// New creates a new SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current time in UTC, truncated to milliseconds so that
// every storage backend round-trips it exactly
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
