package scheduling

import (
	"sort"
	"time"

	"github.com/kanuma/frontdesk/models"
)

// Window returns the effective occupied interval of a booking, including any
// announced arrival delay.
func Window(b *models.Booking) Interval {
	return Span(b.EffectiveStart(), b.DurationMinutes)
}

// FindConflict scans a table's bookings for the first non-terminal one whose
// window overlaps the candidate interval.
func FindConflict(bookings []models.Booking, candidate Interval) *models.Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.IsTerminal() {
			continue
		}
		if Window(b).Overlaps(candidate) {
			return b
		}
	}
	return nil
}

// LatestEndConflict returns the overlapping booking whose window ends last.
// The auto-scheduler keys its proposal off this one so the suggestion never
// lands inside another overlapping booking.
func LatestEndConflict(bookings []models.Booking, candidate Interval) *models.Booking {
	var latest *models.Booking
	for i := range bookings {
		b := &bookings[i]
		if b.IsTerminal() {
			continue
		}
		if !Window(b).Overlaps(candidate) {
			continue
		}
		if latest == nil || Window(b).End.After(Window(latest).End) {
			latest = b
		}
	}
	return latest
}

// ActiveBooking returns the non-terminal booking whose window contains the
// given instant, if any. At most one can exist per table; that is the
// invariant the conflict detector enforces on the write path.
func ActiveBooking(bookings []models.Booking, at time.Time) *models.Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.IsTerminal() {
			continue
		}
		if Window(b).Contains(at) {
			return b
		}
	}
	return nil
}

// UpcomingBookings returns non-terminal bookings starting at or after the
// given instant, soonest first.
func UpcomingBookings(bookings []models.Booking, at time.Time) []models.Booking {
	var upcoming []models.Booking
	for i := range bookings {
		b := bookings[i]
		if b.IsTerminal() {
			continue
		}
		if !b.EffectiveStart().Before(at) {
			upcoming = append(upcoming, b)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].EffectiveStart().Before(upcoming[j].EffectiveStart())
	})
	return upcoming
}
