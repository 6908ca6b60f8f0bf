package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/scheduling"
	"github.com/kanuma/frontdesk/utils"
)

type WaitingListController struct {
	DB        *gorm.DB
	Lookahead time.Duration
}

func NewWaitingListController(db *gorm.DB, lookahead time.Duration) *WaitingListController {
	return &WaitingListController{DB: db, Lookahead: lookahead}
}

func (wc *WaitingListController) AddToWaitingList(c *gin.Context) {
	var req struct {
		CustomerName         string `json:"customerName" binding:"required"`
		Mobile               string `json:"mobile" binding:"required"`
		Email                string `json:"email" binding:"omitempty,email"`
		PeopleCount          int    `json:"peopleCount" binding:"required,min=1"`
		PreferredTableSize   string `json:"preferredTableSize" binding:"required,oneof=SMALL MEDIUM LARGE"`
		BookingType          string `json:"bookingType" binding:"omitempty,oneof=WALK_IN PRE_BOOKING"`
		BookingDate          string `json:"bookingDate" binding:"omitempty,datetime=2006-01-02"`
		BookingTimeSlot      string `json:"bookingTimeSlot" binding:"omitempty,datetime=15:04"`
		EstimatedWaitMinutes *int   `json:"estimatedWaitMinutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	bookingType := models.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = models.WalkIn
	}
	// Pre-booking parties hold a promised slot, so they outrank walk-ins
	// in the queue.
	priority := 0
	if bookingType == models.PreBooking {
		priority = 1
	}

	entry := models.WaitingList{
		CustomerName:         req.CustomerName,
		Mobile:               req.Mobile,
		Email:                req.Email,
		PeopleCount:          req.PeopleCount,
		PreferredTableSize:   models.TableSize(req.PreferredTableSize),
		BookingType:          bookingType,
		BookingDate:          req.BookingDate,
		BookingTimeSlot:      req.BookingTimeSlot,
		Priority:             priority,
		Status:               models.WaitingWaiting,
		EstimatedWaitMinutes: req.EstimatedWaitMinutes,
	}
	if err := wc.DB.Create(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventWaitingListUpdated, entry)
	utils.InfoLogger.Printf("Waiting list: %s added (party of %d, priority %d)",
		entry.CustomerName, entry.PeopleCount, entry.Priority)
	utils.RespondJSON(c, http.StatusCreated, "Added to waiting list", entry)
}

// GetWaitingList returns entries in seating order: priority first, then
// arrival (FIFO within the same priority).
func (wc *WaitingListController) GetWaitingList(c *gin.Context) {
	query := wc.DB.Where("status IN ?", []models.WaitingStatus{models.WaitingWaiting, models.WaitingNotified})
	if date := c.Query("date"); date != "" {
		query = query.Where("booking_date = ? OR booking_date = ''", date)
	}

	var entries []models.WaitingList
	if err := query.Order("priority DESC, created_at ASC").Find(&entries).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiting list", entries)
}

// CheckAssignConflict is the dry run: it reports whether seating this entry
// at the table would collide and what the auto-scheduler would propose, but
// commits nothing.
func (wc *WaitingListController) CheckAssignConflict(c *gin.Context) {
	entryID := c.Param("waiting_id")
	var req struct {
		TableID         string `json:"tableId" binding:"required"`
		DurationMinutes int    `json:"durationMinutes" binding:"omitempty,slot15"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var entry models.WaitingList
	if err := wc.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}

	now := time.Now()
	start, err := resolveStart("", entry.BookingDate, entry.BookingTimeSlot, now)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var bookings []models.Booking
	if err := wc.DB.Where("table_id = ?", req.TableID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	candidate := scheduling.Span(start, duration)
	conflict := scheduling.FindConflict(bookings, candidate)
	if conflict == nil {
		utils.RespondJSON(c, http.StatusOK, "No conflict", gin.H{"hasConflict": false})
		return
	}

	data := gin.H{
		"hasConflict": true,
		"conflict":    conflict,
	}
	if suggested, err := scheduling.SuggestStart(bookings, candidate, wc.Lookahead); err == nil {
		data["suggestedTime"] = suggested.Format(time.RFC3339)
		data["estimatedWaitTime"] = utils.EstimatedWait{EstimatedMinutes: minutesUntil(suggested, now)}
	}
	utils.RespondJSON(c, http.StatusOK, "Conflict detected", data)
}

// AssignTable resolves a waiting entry into a booking. Conflicts follow the
// same contract as booking creation: without autoSchedule the conflict is
// surfaced with a suggestion; with it, the suggested time is re-validated
// and committed.
func (wc *WaitingListController) AssignTable(c *gin.Context) {
	entryID := c.Param("waiting_id")
	var req struct {
		TableID         string `json:"tableId" binding:"required"`
		DurationMinutes int    `json:"durationMinutes" binding:"omitempty,slot15"`
		AutoSchedule    bool   `json:"autoSchedule"`
		SuggestedTime   string `json:"suggestedTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var entry models.WaitingList
	if err := wc.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if entry.Status != models.WaitingWaiting && entry.Status != models.WaitingNotified {
		utils.RespondError(c, http.StatusNotFound, ErrEntryResolved)
		return
	}

	var table models.Table
	if err := wc.DB.First(&table, "id = ?", req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if entry.PeopleCount > table.Seats {
		utils.RespondError(c, http.StatusBadRequest, errCapacity)
		return
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}

	now := time.Now()
	start, err := resolveStart(req.SuggestedTime, entry.BookingDate, entry.BookingTimeSlot, now)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unlock := tableLocks.Lock(table.ID)
	defer unlock()

	var bookings []models.Booking
	if err := wc.DB.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	candidate := scheduling.Span(start, duration)
	if conflict := scheduling.FindConflict(bookings, candidate); conflict != nil {
		suggested, suggestErr := scheduling.SuggestStart(bookings, candidate, wc.Lookahead)

		if !req.AutoSchedule {
			var suggestedPtr *time.Time
			estimated := 0
			if suggestErr == nil {
				suggestedPtr = &suggested
				estimated = minutesUntil(suggested, now)
			}
			utils.RespondConflict(c, "Requested time overlaps an existing booking",
				conflict, suggestedPtr, estimated)
			return
		}
		if suggestErr != nil {
			utils.RespondConflict(c, "No free slot within the scheduling window", conflict, nil, 0)
			return
		}
		// The caller's suggestedTime may be stale by the time staff
		// confirm, so the engine's own re-validated proposal wins.
		start = suggested
		candidate = scheduling.Span(start, duration)
	}

	booking := models.Booking{
		TableID:            table.ID,
		CustomerName:       entry.CustomerName,
		Mobile:             entry.Mobile,
		Email:              entry.Email,
		PeopleCount:        entry.PeopleCount,
		BookingTime:        start,
		BookingDate:        entry.BookingDate,
		BookingTimeSlot:    entry.BookingTimeSlot,
		DurationMinutes:    duration,
		BookingType:        entry.BookingType,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
		Priority:           entry.Priority,
		NotificationsSent:  "[]",
	}
	if err := wc.DB.Create(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	entry.Status = models.WaitingAssigned
	if err := wc.DB.Save(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if candidate.Contains(now) && table.Status == models.TableAvailable {
		if err := scheduling.Transition(&table, models.TableBooked, false, now); err == nil {
			if err := wc.DB.Save(&table).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
			events.Broadcast(events.EventTableStatusUpdated, table)
		}
	}

	events.Broadcast(events.EventWaitingListUpdated, entry)
	events.Broadcast(events.EventBookingCreated, booking)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("Waiting entry %s assigned to table %s at %s",
		entry.ID, table.TableNumber, booking.BookingTime.Format(time.RFC3339))
	utils.RespondJSON(c, http.StatusCreated, "Table assigned from waiting list", booking)
}

// NotifyCustomer marks the entry NOTIFIED; the actual SMS/call happens out
// of band.
func (wc *WaitingListController) NotifyCustomer(c *gin.Context) {
	entryID := c.Param("waiting_id")

	var entry models.WaitingList
	if err := wc.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if entry.Status != models.WaitingWaiting {
		utils.RespondError(c, http.StatusNotFound, ErrEntryResolved)
		return
	}

	notifiedAt := time.Now()
	entry.Status = models.WaitingNotified
	entry.NotifiedAt = &notifiedAt
	if err := wc.DB.Save(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventWaitingListUpdated, entry)
	utils.InfoLogger.Printf("Waiting entry %s notified (%s)", entry.ID, entry.CustomerName)
	utils.RespondJSON(c, http.StatusOK, "Customer notified", entry)
}

func (wc *WaitingListController) CancelEntry(c *gin.Context) {
	entryID := c.Param("waiting_id")

	var entry models.WaitingList
	if err := wc.DB.First(&entry, "id = ?", entryID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if entry.Status == models.WaitingAssigned || entry.Status == models.WaitingCancelled {
		utils.RespondError(c, http.StatusNotFound, ErrEntryResolved)
		return
	}

	entry.Status = models.WaitingCancelled
	if err := wc.DB.Save(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventWaitingListUpdated, entry)
	utils.InfoLogger.Printf("Waiting entry %s cancelled (%s)", entry.ID, entry.CustomerName)
	utils.RespondJSON(c, http.StatusOK, "Waiting entry cancelled", entry)
}
