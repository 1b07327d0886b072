// Package countdown computes the time left until the next occurrence of a fixed
// calendar moment (Christmas morning by default).
package countdown

import "time"

const (
	DefaultMonth     = time.December
	DefaultDay       = 25
	DefaultHour      = 8
	DefaultCelebrate = 24 * time.Hour
)

// Target is a yearly moment in a location.
type Target struct {
	Month time.Month
	Day   int
	Hour  int
	// Celebrate is how long after the moment it still counts as arrived.
	Celebrate time.Duration
	Location  *time.Location
}

// Default returns Dec 25 08:00 local time with a one-day celebration.
func Default() Target {
	return Target{
		Month:     DefaultMonth,
		Day:       DefaultDay,
		Hour:      DefaultHour,
		Celebrate: DefaultCelebrate,
		Location:  time.Local,
	}
}

// Remaining is the time left, broken into display units.
type Remaining struct {
	Target  time.Time
	Days    int
	Hours   int
	Minutes int
	Seconds int
	Arrived bool
}

// At returns this year's moment in the target location.
func (t Target) At(year int) time.Time {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, t.Month, t.Day, t.Hour, 0, 0, 0, loc)
}

// Next returns the moment now is counting towards. While inside the
// celebration window the moment that just passed is returned.
func (t Target) Next(now time.Time) time.Time {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	this := t.At(local.Year())
	if !local.After(this) {
		return this
	}
	if t.Celebrate > 0 && local.Before(this.Add(t.Celebrate)) {
		return this
	}
	return t.At(local.Year() + 1)
}

// Remaining returns the countdown at now.
func (t Target) Remaining(now time.Time) Remaining {
	target := t.Next(now)
	diff := target.Sub(now)
	if diff <= 0 {
		return Remaining{Target: target, Arrived: true}
	}
	secs := int64(diff / time.Second)
	return Remaining{
		Target:  target,
		Days:    int(secs / 86400),
		Hours:   int(secs / 3600 % 24),
		Minutes: int(secs / 60 % 60),
		Seconds: int(secs % 60),
	}
}

// DaysUntil returns whole days left, zero once arrived.
func (t Target) DaysUntil(now time.Time) int {
	return t.Remaining(now).Days
}
