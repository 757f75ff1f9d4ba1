// Package engine implements the hold-target session: target lifecycle, the
// per-target dwell timer, pointer trajectory capture and session timing.
//
// The engine is single-threaded. Every method must be called from one
// event loop; timers are delivered through a Scheduler on that same loop.
package engine

import (
	"time"
)

// Clock is a monotonic nanosecond time source.
type Clock interface {
	Now() int64
}

// RandomSource supplies uniform random numbers.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

type monotonicClock struct {
	base time.Time
}

// NewMonotonicClock returns a Clock counting nanoseconds since its creation.
func NewMonotonicClock() Clock {
	return &monotonicClock{base: time.Now()}
}

func (c *monotonicClock) Now() int64 {
	return int64(time.Since(c.base))
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	ns int64
}

// Now implements Clock.
func (c *ManualClock) Now() int64 {
	return c.ns
}

// Set moves the clock to ns. Moving backwards is ignored.
func (c *ManualClock) Set(ns int64) {
	if ns > c.ns {
		c.ns = ns
	}
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.Set(c.ns + int64(d))
}
