package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/kanuma/frontdesk/scheduling"
)

// Every write to a table's schedule runs under its lock, so conflict check
// plus commit is atomic per table (FIFO arrival order, who books first wins).
var tableLocks = scheduling.NewTableLocker()

var (
	ErrBookingFinished = errors.New("booking not found or already finished")
	ErrEntryResolved   = errors.New("waiting entry not found or already resolved")

	errMissingDateTime = errors.New("bookingDate and bookingTimeSlot are required")
	errCapacity        = errors.New("party size exceeds table capacity")
)

// resolveStart turns the client's time fields into a canonical start instant.
// Pre-bookings send a local date and HH:MM slot; walk-ins usually send
// nothing and start now.
func resolveStart(bookingTime, bookingDate, bookingTimeSlot string, now time.Time) (time.Time, error) {
	if bookingTime != "" {
		t, err := time.Parse(time.RFC3339, bookingTime)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid bookingTime: %w", err)
		}
		return t, nil
	}
	if bookingDate != "" && bookingTimeSlot != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04", bookingDate+" "+bookingTimeSlot, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid bookingDate/bookingTimeSlot: %w", err)
		}
		return t, nil
	}
	return now, nil
}

// minutesUntil is the quoted wait, rounded up, never negative.
func minutesUntil(at, now time.Time) int {
	mins := scheduling.RemainingMinutes(scheduling.Interval{End: at}, now)
	if mins < 0 {
		return 0
	}
	return mins
}
