package gwave

import "time"

// Clock is a monotonic animation clock. ElapsedTime returns seconds since the
// clock was started.
type Clock interface {
	ElapsedTime() float32
}

// WallClock measures elapsed wall time using the monotonic reading of [time.Now].
type WallClock struct {
	start time.Time
}

// NewWallClock returns a clock started at the moment of the call.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// ElapsedTime implements [Clock].
func (c *WallClock) ElapsedTime() float32 {
	return float32(time.Since(c.start).Seconds())
}

// ManualClock is a [Clock] advanced explicitly. Useful for deterministic tests.
type ManualClock struct {
	t     float32
	reads int
}

// Advance moves the clock forward by dt seconds. Negative values are ignored.
func (c *ManualClock) Advance(dt float32) {
	if dt > 0 {
		c.t += dt
	}
}

// ElapsedTime implements [Clock].
func (c *ManualClock) ElapsedTime() float32 {
	c.reads++
	return c.t
}

// Reads returns the number of times ElapsedTime has been called.
func (c *ManualClock) Reads() int { return c.reads }
