package scheduling

import "time"

// Interval is a half-open occupied window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Span builds the interval occupied by a booking starting at start.
func Span(start time.Time, durationMinutes int) Interval {
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
}

// Overlaps reports whether two half-open intervals intersect. Touching
// intervals (a.End == b.Start) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether the instant falls inside the window.
func (iv Interval) Contains(at time.Time) bool {
	return !at.Before(iv.Start) && at.Before(iv.End)
}

// RemainingMinutes is the time left in the window, rounded up. Zero or
// negative means the window has expired.
func RemainingMinutes(iv Interval, now time.Time) int {
	d := iv.End.Sub(now)
	mins := int(d / time.Minute)
	if d%time.Minute > 0 {
		mins++
	}
	return mins
}
