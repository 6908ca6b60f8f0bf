package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kanuma/frontdesk/models"
)

func booking(start time.Time, durationMinutes int) models.Booking {
	return models.Booking{
		BookingTime:     start,
		DurationMinutes: durationMinutes,
		Status:          models.BookingBooked,
	}
}

func TestFindConflict(t *testing.T) {
	bookings := []models.Booking{booking(at(14, 0), 60)}

	assert.NotNil(t, FindConflict(bookings, Span(at(14, 30), 60)))
	assert.Nil(t, FindConflict(bookings, Span(at(15, 0), 60)), "touching start is free")

	cancelled := booking(at(14, 0), 60)
	cancelled.Status = models.BookingCancelled
	assert.Nil(t, FindConflict([]models.Booking{cancelled}, Span(at(14, 30), 60)),
		"terminal bookings never conflict")
}

func TestFindConflictHonorsClientDelay(t *testing.T) {
	delayed := booking(at(15, 0), 60)
	delayed.ConfirmationStatus = models.ConfirmationClientDelayed
	delayed.DelayMinutes = 20
	bookings := []models.Booking{delayed}

	// Original window [15:00, 16:00) would conflict, effective [15:20, 16:20)
	// leaves [14:30, 15:20) free.
	assert.Nil(t, FindConflict(bookings, Span(at(14, 30), 50)))
	assert.NotNil(t, FindConflict(bookings, Span(at(15, 30), 30)))
}

func TestSuggestStartAfterSingleConflict(t *testing.T) {
	bookings := []models.Booking{booking(at(14, 0), 60)}

	suggested, err := SuggestStart(bookings, Span(at(14, 30), 60), 12*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, at(15, 5), suggested, "conflict end plus cleanup buffer")
}

func TestSuggestStartSkipsBookingInsideBufferWindow(t *testing.T) {
	bookings := []models.Booking{
		booking(at(14, 0), 60),
		booking(at(15, 10), 30), // starts within the first suggestion's window
	}

	suggested, err := SuggestStart(bookings, Span(at(14, 30), 60), 12*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, at(15, 45), suggested)
	assert.Nil(t, FindConflict(bookings, Span(suggested, 60)),
		"a suggestion must never overlap any existing booking")
}

func TestSuggestStartUsesLatestEndingConflict(t *testing.T) {
	bookings := []models.Booking{
		booking(at(14, 0), 30),
		booking(at(14, 0), 90), // same start, ends later
	}

	suggested, err := SuggestStart(bookings, Span(at(14, 15), 60), 12*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, at(15, 35), suggested)
}

func TestSuggestStartBufferInvariant(t *testing.T) {
	bookings := []models.Booking{booking(at(14, 0), 60)}

	suggested, err := SuggestStart(bookings, Span(at(14, 30), 60), 12*time.Hour)
	assert.NoError(t, err)

	conflictEnd := Window(&bookings[0]).End
	assert.False(t, suggested.Before(conflictEnd.Add(CleanupBufferMinutes*time.Minute)))
}

func TestSuggestStartLookaheadExhausted(t *testing.T) {
	// Back-to-back bookings cover the whole lookahead window.
	var bookings []models.Booking
	for i := 0; i < 8; i++ {
		bookings = append(bookings, booking(at(14, 0).Add(time.Duration(i)*65*time.Minute), 65))
	}

	_, err := SuggestStart(bookings, Span(at(14, 0), 60), 2*time.Hour)
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestUpcomingBookings(t *testing.T) {
	bookings := []models.Booking{
		booking(at(16, 0), 60),
		booking(at(15, 0), 60),
		booking(at(10, 0), 60),
	}
	done := booking(at(17, 0), 60)
	done.Status = models.BookingCompleted
	bookings = append(bookings, done)

	upcoming := UpcomingBookings(bookings, at(14, 0))
	assert.Len(t, upcoming, 2)
	assert.Equal(t, at(15, 0), upcoming[0].BookingTime, "soonest first")
	assert.Equal(t, at(16, 0), upcoming[1].BookingTime)
}
