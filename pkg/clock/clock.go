// Package clock owns game time. Time is measured in elapsed hours and
// only ever moves forward; the Clock is the sole writer.
package clock

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDuration is returned when an advance is requested with a
// non-positive or non-finite number of hours.
var ErrInvalidDuration = errors.New("invalid duration")

// GameTime is elapsed game time in hours since the session began.
type GameTime float64

// HourOfDay maps a GameTime onto the repeating 24-hour wheel.
func (t GameTime) HourOfDay() float64 {
	return math.Mod(float64(t), 24)
}

// Day returns the zero-based day of the cycle.
func (t GameTime) Day() int {
	return int(float64(t) / 24)
}

func (t GameTime) String() string {
	h := t.HourOfDay()
	return fmt.Sprintf("day %d, %02d:%02d", t.Day()+1, int(h), int(h*60)%60)
}

// TickListener is notified after every advance with the old and new
// time, so schedule crossings can be observed exactly once per tick.
type TickListener interface {
	OnTick(from, to GameTime)
}

// Clock is the authoritative source of elapsed time for one session.
type Clock struct {
	now       GameTime
	listeners []TickListener
}

func New() *Clock {
	return &Clock{}
}

// NewAt creates a clock already advanced to the given elapsed hours.
// Used when restoring a session from a snapshot.
func NewAt(hours float64) *Clock {
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		hours = 0
	}
	return &Clock{now: GameTime(hours)}
}

// Subscribe registers a listener for future ticks.
func (c *Clock) Subscribe(l TickListener) {
	c.listeners = append(c.listeners, l)
}

// Now returns the current game time.
func (c *Clock) Now() GameTime {
	return c.now
}

// Advance moves time forward by the given number of hours and notifies
// listeners. Non-positive or non-finite durations are rejected before
// any mutation.
func (c *Clock) Advance(hours float64) (GameTime, error) {
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return c.now, fmt.Errorf("%w: %v hours", ErrInvalidDuration, hours)
	}

	from := c.now
	c.now += GameTime(hours)
	for _, l := range c.listeners {
		l.OnTick(from, c.now)
	}
	return c.now, nil
}
