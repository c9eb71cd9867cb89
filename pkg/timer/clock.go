package timer

import "time"

// Clock supplies wall-clock readings to the engine. Elapsed time is always
// derived from the difference between two readings, never from counting
// ticks, so late or dropped ticks do not lose time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
