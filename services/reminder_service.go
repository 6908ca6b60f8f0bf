package services

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/utils"
)

const (
	AlertUpcomingBooking = "UPCOMING_BOOKING"
	AlertLongWaiting     = "LONG_WAITING"
)

// Alert is the payload pushed for reminders. The id is deterministic per
// booking/entry so re-delivery never duplicates on the consumer side.
type Alert struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	BookingID          string `json:"bookingId,omitempty"`
	WaitingListID      string `json:"waitingListId,omitempty"`
	TableID            string `json:"tableId,omitempty"`
	TableNumber        string `json:"tableNumber,omitempty"`
	CustomerName       string `json:"customerName"`
	Mobile             string `json:"mobile"`
	PeopleCount        int    `json:"peopleCount"`
	BookingTime        string `json:"bookingTime,omitempty"`
	MinutesBefore      int    `json:"minutesBefore,omitempty"`
	WaitingMinutes     int    `json:"waitingMinutes,omitempty"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
	Message            string `json:"message"`
	Timestamp          string `json:"timestamp"`
}

// ReminderService periodically sweeps active bookings and waiting entries
// and raises upcoming-booking and long-waiting alerts. It only observes;
// booking state changes go through the notification endpoints.
type ReminderService struct {
	DB                    *gorm.DB
	UpcomingMinutesBefore int
	LongWaitMinutes       int

	mu        sync.Mutex
	delivered map[string]bool
}

func NewReminderService(db *gorm.DB, upcomingMinutesBefore, longWaitMinutes int) *ReminderService {
	return &ReminderService{
		DB:                    db,
		UpcomingMinutesBefore: upcomingMinutesBefore,
		LongWaitMinutes:       longWaitMinutes,
		delivered:             make(map[string]bool),
	}
}

// Sweep runs one pass. Exposed so the scheduler and tests drive it with an
// explicit clock.
func (rs *ReminderService) Sweep(now time.Time) {
	rs.sweepUpcoming(now)
	rs.sweepLongWaiting(now)
}

func (rs *ReminderService) sweepUpcoming(now time.Time) {
	var bookings []models.Booking
	err := rs.DB.Preload("Table").
		Where("status NOT IN ?", []models.BookingStatus{models.BookingCancelled, models.BookingCompleted}).
		Where("confirmation_status = ?", models.ConfirmationPending).
		Find(&bookings).Error
	if err != nil {
		utils.ErrorLogger.Printf("Reminder sweep: fetching bookings: %v", err)
		return
	}

	horizon := time.Duration(rs.UpcomingMinutesBefore) * time.Minute
	for i := range bookings {
		b := &bookings[i]
		start := b.EffectiveStart()
		until := start.Sub(now)
		if until <= 0 || until > horizon {
			continue
		}
		if b.HasNotification(AlertUpcomingBooking) {
			continue
		}

		alert := Alert{
			ID:                 fmt.Sprintf("upcoming:%s", b.ID),
			Type:               AlertUpcomingBooking,
			BookingID:          b.ID,
			TableID:            b.TableID,
			CustomerName:       b.CustomerName,
			Mobile:             b.Mobile,
			PeopleCount:        b.PeopleCount,
			BookingTime:        start.Format(time.RFC3339),
			MinutesBefore:      int(until / time.Minute),
			ConfirmationStatus: string(b.ConfirmationStatus),
			Timestamp:          now.Format(time.RFC3339),
		}
		if b.Table != nil {
			alert.TableNumber = b.Table.TableNumber
			alert.Message = fmt.Sprintf("%s arrives at table %s in %d minutes (unconfirmed)",
				b.CustomerName, b.Table.TableNumber, alert.MinutesBefore)
		} else {
			alert.Message = fmt.Sprintf("%s arrives in %d minutes (unconfirmed)",
				b.CustomerName, alert.MinutesBefore)
		}

		events.BroadcastMessage(events.Message{
			ID:    alert.ID,
			Event: events.EventUpcomingBooking,
			Data:  alert,
		})

		// Persist delivery so a restart does not re-alert.
		b.MarkNotificationSent(AlertUpcomingBooking)
		if err := rs.DB.Model(b).Update("notifications_sent", b.NotificationsSent).Error; err != nil {
			utils.ErrorLogger.Printf("Reminder sweep: marking booking %s: %v", b.ID, err)
		}
		utils.InfoLogger.Printf("Upcoming-booking alert for %s (booking %s)", b.CustomerName, b.ID)
	}
}

func (rs *ReminderService) sweepLongWaiting(now time.Time) {
	var entries []models.WaitingList
	err := rs.DB.Where("status = ?", models.WaitingWaiting).Find(&entries).Error
	if err != nil {
		utils.ErrorLogger.Printf("Reminder sweep: fetching waiting list: %v", err)
		return
	}

	for i := range entries {
		e := &entries[i]
		waited := e.WaitingMinutes(now)
		if waited < rs.LongWaitMinutes {
			continue
		}

		id := fmt.Sprintf("longwait:%s", e.ID)
		rs.mu.Lock()
		seen := rs.delivered[id]
		rs.delivered[id] = true
		rs.mu.Unlock()
		if seen {
			continue
		}

		alert := Alert{
			ID:             id,
			Type:           AlertLongWaiting,
			WaitingListID:  e.ID,
			CustomerName:   e.CustomerName,
			Mobile:         e.Mobile,
			PeopleCount:    e.PeopleCount,
			WaitingMinutes: waited,
			Message:        fmt.Sprintf("%s has been waiting %d minutes", e.CustomerName, waited),
			Timestamp:      now.Format(time.RFC3339),
		}
		events.BroadcastMessage(events.Message{
			ID:    id,
			Event: events.EventLongWaiting,
			Data:  alert,
		})
		utils.InfoLogger.Printf("Long-waiting alert for %s (%d minutes)", e.CustomerName, waited)
	}
}
