// Package clock supplies millisecond timestamps to the auction engine.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock returns the current time in milliseconds
type Clock interface {
	NowMillis() int64
}

// System reads the wall clock
type System struct{}

// NowMillis returns Unix milliseconds
func (System) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Manual is a settable clock for tests and simulations
type Manual struct {
	now atomic.Int64
}

// NewManual creates a Manual clock at the given millisecond reading
func NewManual(start int64) *Manual {
	m := &Manual{}
	m.now.Store(start)
	return m
}

// NowMillis returns the current reading
func (m *Manual) NowMillis() int64 {
	return m.now.Load()
}

// Set moves the clock to ms
func (m *Manual) Set(ms int64) {
	m.now.Store(ms)
}

// Advance moves the clock forward by d milliseconds and returns the new reading
func (m *Manual) Advance(d int64) int64 {
	return m.now.Add(d)
}
