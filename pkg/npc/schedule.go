package npc

import "fmt"

// Interval is a half-open range of hours [Start, End) on the 24-hour
// wheel. An interval with Start > End wraps past midnight.
type Interval struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Contains reports whether the given hour-of-day falls inside the
// interval.
func (iv Interval) Contains(hour float64) bool {
	if iv.Start <= iv.End {
		return hour >= iv.Start && hour < iv.End
	}
	// Wraps midnight, e.g. (22, 4).
	return hour >= iv.Start || hour < iv.End
}

// Validate checks that both endpoints sit on the wheel.
func (iv Interval) Validate() error {
	if iv.Start < 0 || iv.Start >= 24 {
		return fmt.Errorf("interval start %v outside [0,24)", iv.Start)
	}
	if iv.End < 0 || iv.End > 24 {
		return fmt.Errorf("interval end %v outside [0,24]", iv.End)
	}
	if iv.Start == iv.End {
		return fmt.Errorf("interval [%v,%v) is empty", iv.Start, iv.End)
	}
	return nil
}

// Schedule is an ordered set of intervals during which an NPC is
// eligible to be present.
type Schedule []Interval

// Contains reports whether any interval covers the given hour-of-day.
func (s Schedule) Contains(hour float64) bool {
	for _, iv := range s {
		if iv.Contains(hour) {
			return true
		}
	}
	return false
}

// Validate checks every interval in the schedule.
func (s Schedule) Validate() error {
	for i, iv := range s {
		if err := iv.Validate(); err != nil {
			return fmt.Errorf("interval %d: %w", i, err)
		}
	}
	return nil
}
