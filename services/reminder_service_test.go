package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kanuma/frontdesk/models"
)

func TestSweepMarksUpcomingBookingOnce(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableAvailable)

	now := time.Now()
	booking := seedBooking(t, db, table.ID, now.Add(15*time.Minute), 60, models.BookingBooked)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)

	var got models.Booking
	assert.NoError(t, db.First(&got, "id = ?", booking.ID).Error)
	assert.True(t, got.HasNotification(AlertUpcomingBooking))
	assert.Len(t, got.SentNotifications(), 1)

	// A re-sweep must not record (or deliver) a second alert.
	rs.Sweep(now.Add(time.Minute))
	assert.NoError(t, db.First(&got, "id = ?", booking.ID).Error)
	assert.Len(t, got.SentNotifications(), 1)
}

func TestSweepSkipsConfirmedBooking(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableAvailable)

	now := time.Now()
	booking := seedBooking(t, db, table.ID, now.Add(15*time.Minute), 60, models.BookingBooked)
	assert.NoError(t, db.Model(&booking).Update("confirmation_status", models.ConfirmationConfirmed).Error)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)

	var got models.Booking
	assert.NoError(t, db.First(&got, "id = ?", booking.ID).Error)
	assert.False(t, got.HasNotification(AlertUpcomingBooking))
}

func TestSweepSkipsBookingOutsideHorizon(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableAvailable)

	now := time.Now()
	booking := seedBooking(t, db, table.ID, now.Add(2*time.Hour), 60, models.BookingBooked)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)

	var got models.Booking
	assert.NoError(t, db.First(&got, "id = ?", booking.ID).Error)
	assert.False(t, got.HasNotification(AlertUpcomingBooking))
}

func TestSweepRespectsClientDelay(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableAvailable)

	now := time.Now()
	booking := seedBooking(t, db, table.ID, now.Add(10*time.Minute), 60, models.BookingBooked)
	assert.NoError(t, db.Model(&booking).Updates(map[string]interface{}{
		"confirmation_status": models.ConfirmationClientDelayed,
		"delay_minutes":       120,
	}).Error)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)

	// CLIENT_DELAYED bookings are no longer PENDING, so no alert either way;
	// the effective start has also moved out of the horizon.
	var got models.Booking
	assert.NoError(t, db.First(&got, "id = ?", booking.ID).Error)
	assert.False(t, got.HasNotification(AlertUpcomingBooking))
}

func TestSweepRaisesLongWaitingAlertOnce(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	entry := models.WaitingList{
		CustomerName:       "Vikram Shah",
		Mobile:             "9123456780",
		PeopleCount:        3,
		PreferredTableSize: models.SizeMedium,
		BookingType:        models.WalkIn,
		Status:             models.WaitingWaiting,
	}
	assert.NoError(t, db.Create(&entry).Error)
	assert.NoError(t, db.Model(&entry).Update("created_at", now.Add(-45*time.Minute)).Error)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)
	assert.True(t, rs.delivered["longwait:"+entry.ID])

	before := len(rs.delivered)
	rs.Sweep(now.Add(time.Minute))
	assert.Equal(t, before, len(rs.delivered), "re-sweep does not add alerts")
}

func TestSweepIgnoresFreshWaitingEntry(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	entry := models.WaitingList{
		CustomerName:       "Meera Iyer",
		Mobile:             "9988776655",
		PeopleCount:        2,
		PreferredTableSize: models.SizeSmall,
		BookingType:        models.WalkIn,
		Status:             models.WaitingWaiting,
	}
	assert.NoError(t, db.Create(&entry).Error)

	rs := NewReminderService(db, 30, 20)
	rs.Sweep(now)
	assert.False(t, rs.delivered["longwait:"+entry.ID])
}
