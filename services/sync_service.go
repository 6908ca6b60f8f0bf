package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/scheduling"
	"github.com/kanuma/frontdesk/utils"
)

type SyncSummary struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
}

// SyncTableStatuses recomputes every table's status from its non-terminal
// bookings' effective windows and corrects drift: an expired BOOKED table
// reverts to AVAILABLE, a table whose next booking window has opened flips
// to BOOKED. A seated table (OccupiedSince set) stays OCCUPIED while a
// non-terminal booking backs it or staff forced the status.
func SyncTableStatuses(db *gorm.DB, now time.Time) (SyncSummary, error) {
	var summary SyncSummary

	var tables []models.Table
	if err := db.Find(&tables).Error; err != nil {
		return summary, err
	}

	for i := range tables {
		summary.Checked++
		changed, err := syncOne(db, &tables[i], now)
		if err != nil {
			return summary, err
		}
		if changed {
			summary.Updated++
		}
	}

	if summary.Updated > 0 {
		events.Broadcast(events.EventDashboardUpdated, summary)
	}
	return summary, nil
}

// SyncTable reconciles a single table, used by the write path after a
// booking mutation so the caller sees the corrected status immediately.
func SyncTable(db *gorm.DB, tableID string, now time.Time) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, "id = ?", tableID).Error; err != nil {
		return nil, err
	}
	if _, err := syncOne(db, &table, now); err != nil {
		return nil, err
	}
	return &table, nil
}

func syncOne(db *gorm.DB, table *models.Table, now time.Time) (bool, error) {
	var bookings []models.Booking
	if err := db.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
		return false, err
	}

	desired := desiredStatus(table, bookings, now)
	if desired == table.Status {
		return false, nil
	}

	table.Status = desired
	if desired != models.TableOccupied {
		table.ManualOverride = false
		table.OccupiedSince = nil
	}
	if desired == models.TableAvailable {
		table.AvailableInMinutes = nil
	}
	if err := db.Save(table).Error; err != nil {
		return false, err
	}

	utils.InfoLogger.Printf("Sync: table %s corrected to %s", table.TableNumber, desired)
	events.Broadcast(events.EventTableStatusUpdated, table)
	return true, nil
}

func desiredStatus(table *models.Table, bookings []models.Booking, now time.Time) models.TableStatus {
	if table.OccupiedSince != nil {
		if table.ManualOverride && table.Status == models.TableOccupied {
			return models.TableOccupied
		}
		// A seated party holds the table while any started booking is
		// still open, even past its nominal window.
		for i := range bookings {
			b := &bookings[i]
			if !b.IsTerminal() && !b.EffectiveStart().After(now) {
				return models.TableOccupied
			}
		}
	}

	if scheduling.ActiveBooking(bookings, now) != nil {
		return models.TableBooked
	}
	return models.TableAvailable
}
