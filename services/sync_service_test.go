package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kanuma/frontdesk/models"
)

func TestSyncRevertsExpiredBookedTable(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableBooked)

	now := time.Now()
	seedBooking(t, db, table.ID, now.Add(-2*time.Hour), 60, models.BookingBooked)

	summary, err := SyncTableStatuses(db, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.Updated)

	var got models.Table
	assert.NoError(t, db.First(&got, "id = ?", table.ID).Error)
	assert.Equal(t, models.TableAvailable, got.Status)
}

func TestSyncFlipsTableToBookedWhenWindowOpens(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableAvailable)

	now := time.Now()
	seedBooking(t, db, table.ID, now.Add(-10*time.Minute), 60, models.BookingBooked)

	_, err := SyncTableStatuses(db, now)
	assert.NoError(t, err)

	var got models.Table
	assert.NoError(t, db.First(&got, "id = ?", table.ID).Error)
	assert.Equal(t, models.TableBooked, got.Status)
}

func TestSyncKeepsManualOccupiedOverride(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableOccupied)

	now := time.Now()
	since := now.Add(-30 * time.Minute)
	table.OccupiedSince = &since
	table.ManualOverride = true
	assert.NoError(t, db.Save(&table).Error)

	summary, err := SyncTableStatuses(db, now)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Updated, "a deliberate staff override is not drift")

	var got models.Table
	assert.NoError(t, db.First(&got, "id = ?", table.ID).Error)
	assert.Equal(t, models.TableOccupied, got.Status)
}

func TestSyncKeepsSeatedPartyPastWindow(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableOccupied)

	now := time.Now()
	since := now.Add(-90 * time.Minute)
	table.OccupiedSince = &since
	assert.NoError(t, db.Save(&table).Error)

	// The party outstayed the nominal hour but the booking is still open.
	seedBooking(t, db, table.ID, now.Add(-90*time.Minute), 60, models.BookingBooked)

	_, err := SyncTableStatuses(db, now)
	assert.NoError(t, err)

	var got models.Table
	assert.NoError(t, db.First(&got, "id = ?", table.ID).Error)
	assert.Equal(t, models.TableOccupied, got.Status)
}

func TestSyncFreesTableAfterBookingCancelled(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableOccupied)

	now := time.Now()
	since := now.Add(-20 * time.Minute)
	table.OccupiedSince = &since
	assert.NoError(t, db.Save(&table).Error)

	seedBooking(t, db, table.ID, now.Add(-20*time.Minute), 60, models.BookingCancelled)

	_, err := SyncTableStatuses(db, now)
	assert.NoError(t, err)

	var got models.Table
	assert.NoError(t, db.First(&got, "id = ?", table.ID).Error)
	assert.Equal(t, models.TableAvailable, got.Status)
	assert.Nil(t, got.OccupiedSince)
}

func TestSyncTableConvergesSingleTable(t *testing.T) {
	db := setupTestDB(t)
	table := seedFloorAndTable(t, db, models.TableBooked)

	now := time.Now()
	got, err := SyncTable(db, table.ID, now)
	assert.NoError(t, err)
	assert.Equal(t, models.TableAvailable, got.Status, "no bookings at all means available")

	// A second pass is a no-op: the policy is a pure function of bookings.
	again, err := SyncTable(db, table.ID, now)
	assert.NoError(t, err)
	assert.Equal(t, got.Status, again.Status)
}
