package scheduling

import (
	"errors"
	"time"

	"github.com/kanuma/frontdesk/models"
)

// CleanupBufferMinutes is the gap left after a conflicting booking ends so
// staff can reset the table.
const CleanupBufferMinutes = 5

// ErrNoFreeSlot means the lookahead window closed before a conflict-free
// start was found.
var ErrNoFreeSlot = errors.New("no conflict-free slot within lookahead window")

// SuggestStart proposes the earliest start at or after the requested window
// that does not overlap any non-terminal booking on the table. Each proposal
// sits at least CleanupBufferMinutes past the latest-ending conflict and is
// re-validated against the full booking list before being returned, so a
// suggestion can never land inside a different booking that starts within
// the buffer. The search is bounded by lookahead from the requested start.
func SuggestStart(bookings []models.Booking, requested Interval, lookahead time.Duration) (time.Time, error) {
	duration := requested.End.Sub(requested.Start)
	limit := requested.Start.Add(lookahead)

	start := requested.Start
	for {
		conflict := LatestEndConflict(bookings, Interval{Start: start, End: start.Add(duration)})
		if conflict == nil {
			return start, nil
		}
		start = Window(conflict).End.Add(CleanupBufferMinutes * time.Minute)
		if start.After(limit) {
			return time.Time{}, ErrNoFreeSlot
		}
	}
}
