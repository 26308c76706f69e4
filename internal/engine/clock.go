package engine

import "time"

// Clock supplies the wall time a tick evaluates restock triggers against.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock. Restock triggers are local times
// of day.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}
