package util

import (
	"fmt"
	"math"
)

// Clock is a playback position split into whole minutes and seconds.
type Clock struct {
	Minute int
	Second int
}

// String renders the clock as m:ss.
func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", c.Minute, c.Second)
}

// ClockOf floors seconds into a Clock. Negative and non-finite input yields 0:00.
func ClockOf(seconds float64) Clock {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Clock{}
	}
	total := int(math.Floor(seconds))
	return Clock{Minute: total / 60, Second: total % 60}
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds float64) string {
	return ClockOf(seconds).String()
}

// FormatTotal renders a long span as "X hr Y min", or "Y min Z sec" under an hour.
func FormatTotal(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%d hr %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min %d sec", minutes, total%60)
}

// Percent returns floor(current/duration*100), or 0 when that is undefined.
func Percent(current, duration float64) int {
	if duration <= 0 || math.IsNaN(current) || math.IsNaN(duration) {
		return 0
	}
	p := math.Floor(current / duration * 100)
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return 0
	}
	return int(p)
}
