package weather

import (
	"time"

	"go.uber.org/atomic"
)

// ClockIDs issues time-derived ids: the current Unix millisecond, bumped past
// the previous id when two searches land in the same millisecond.
type ClockIDs struct {
	last atomic.Int64
	now  func() time.Time
}

// NewClockIDs creates an id source driven by now. A nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

// Next returns an id strictly greater than any previously returned.
func (c *ClockIDs) Next() int64 {
	for {
		prev := c.last.Load()
		next := c.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CAS(prev, next) {
			return next
		}
	}
}
