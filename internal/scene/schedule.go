package scene

import "time"

// DefaultInterval is the rolling period between scheduled additions.
const DefaultInterval = 6 * time.Hour

// DueCount returns how many additions are pending at now.
//
// With no previous addition one element is due, which seeds a fresh scene. A clock
// that moved backwards reports nothing due. Otherwise every whole interval elapsed
// since last counts once, so a scene left alone for several intervals catches up.
func DueCount(last, now time.Time, interval time.Duration) int {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if last.IsZero() {
		return 1
	}
	elapsed := now.Sub(last)
	if elapsed < interval {
		return 0
	}
	return int(elapsed / interval)
}

// NextDue returns when the next addition becomes due. The zero time means now.
func NextDue(last time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if last.IsZero() {
		return time.Time{}
	}
	return last.Add(interval)
}
