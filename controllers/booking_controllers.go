package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/scheduling"
	"github.com/kanuma/frontdesk/services"
	"github.com/kanuma/frontdesk/utils"
)

type BookingController struct {
	DB        *gorm.DB
	Lookahead time.Duration
}

func NewBookingController(db *gorm.DB, lookahead time.Duration) *BookingController {
	return &BookingController{DB: db, Lookahead: lookahead}
}

type createBookingRequest struct {
	TableID             string `json:"tableId" binding:"required"`
	CustomerName        string `json:"customerName" binding:"required"`
	Mobile              string `json:"mobile" binding:"required"`
	Email               string `json:"email" binding:"omitempty,email"`
	PeopleCount         int    `json:"peopleCount" binding:"required,min=1"`
	BookingTime         string `json:"bookingTime"`
	BookingDate         string `json:"bookingDate" binding:"omitempty,datetime=2006-01-02"`
	BookingTimeSlot     string `json:"bookingTimeSlot" binding:"omitempty,datetime=15:04"`
	DurationMinutes     int    `json:"durationMinutes" binding:"omitempty,slot15"`
	BookingType         string `json:"bookingType" binding:"omitempty,oneof=WALK_IN PRE_BOOKING"`
	Priority            int    `json:"priority"`
	ConfirmAutoSchedule bool   `json:"confirmAutoSchedule"`
}

// CreateBooking is the main write path: validate, lock the table, detect
// conflicts, and either commit, commit at the auto-scheduled time (only with
// explicit confirmation), or surface the conflict with a suggestion so the
// caller can choose a resolution.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	bc.create(c, req)
}

func (bc *BookingController) create(c *gin.Context, req createBookingRequest) {
	now := time.Now()
	start, err := resolveStart(req.BookingTime, req.BookingDate, req.BookingTimeSlot, now)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}
	bookingType := models.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = models.WalkIn
	}

	var table models.Table
	if err := bc.DB.First(&table, "id = ?", req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if req.PeopleCount > table.Seats {
		utils.RespondError(c, http.StatusBadRequest, errCapacity)
		return
	}

	unlock := tableLocks.Lock(table.ID)
	defer unlock()

	var bookings []models.Booking
	if err := bc.DB.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	candidate := scheduling.Span(start, duration)
	autoScheduled := false

	if conflict := scheduling.FindConflict(bookings, candidate); conflict != nil {
		suggested, suggestErr := scheduling.SuggestStart(bookings, candidate, bc.Lookahead)

		if !req.ConfirmAutoSchedule {
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
			utils.RespondConflict(c, "No free slot within the scheduling window",
				conflict, nil, 0)
			return
		}
		start = suggested
		candidate = scheduling.Span(start, duration)
		autoScheduled = true
	}

	booking := models.Booking{
		TableID:            table.ID,
		CustomerName:       req.CustomerName,
		Mobile:             req.Mobile,
		Email:              req.Email,
		PeopleCount:        req.PeopleCount,
		BookingTime:        start,
		BookingDate:        req.BookingDate,
		BookingTimeSlot:    req.BookingTimeSlot,
		DurationMinutes:    duration,
		BookingType:        bookingType,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
		Priority:           req.Priority,
		NotificationsSent:  "[]",
	}
	if err := bc.DB.Create(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// The table flips to BOOKED only once the committed window has opened;
	// an auto-scheduled or future booking leaves it as is until the sync
	// pass reaches the window.
	if candidate.Contains(now) && table.Status == models.TableAvailable {
		if err := scheduling.Transition(&table, models.TableBooked, false, now); err == nil {
			if err := bc.DB.Save(&table).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
			events.Broadcast(events.EventTableStatusUpdated, table)
		}
	}

	events.Broadcast(events.EventBookingCreated, booking)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("Booking created for %s on table %s at %s (autoScheduled=%v)",
		booking.CustomerName, table.TableNumber, booking.BookingTime.Format(time.RFC3339), autoScheduled)

	utils.RespondJSON(c, http.StatusCreated, "Booking created successfully", gin.H{
		"booking":       booking,
		"autoScheduled": autoScheduled,
	})
}

func (bc *BookingController) GetAllBookings(c *gin.Context) {
	var bookings []models.Booking
	if err := bc.DB.Preload("Table").Order("booking_time ASC").Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

func (bc *BookingController) GetBookingsByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	dayStart, err := time.ParseInLocation("2006-01-02", date, time.Now().Location())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	var bookings []models.Booking
	err = bc.DB.Preload("Table").
		Where("booking_time >= ? AND booking_time < ?", dayStart, dayEnd).
		Order("booking_time ASC").
		Find(&bookings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings for "+date, bookings)
}

// GetAvailableTables lists tables that fit the party and are free at the
// requested time (now by default). The smallest sufficient size class is
// recommended; when no table of that class is free the response says so and
// larger tables are offered instead.
func (bc *BookingController) GetAvailableTables(c *gin.Context) {
	var query struct {
		PeopleCount     int    `form:"peopleCount" binding:"required,min=1"`
		BookingDate     string `form:"bookingDate" binding:"omitempty,datetime=2006-01-02"`
		BookingTimeSlot string `form:"bookingTimeSlot" binding:"omitempty,datetime=15:04"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	at, err := resolveStart("", query.BookingDate, query.BookingTimeSlot, now)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	isNow := at.Equal(now)

	var tables []models.Table
	if err := bc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	recommended := models.RecommendedSize(query.PeopleCount)
	available := make([]models.Table, 0)
	recommendedSizeMet := false

	for _, table := range tables {
		if table.Seats < query.PeopleCount {
			continue
		}
		// For the current instant the physical status is authoritative; a
		// projected time only cares about booking windows.
		if isNow && table.Status != models.TableAvailable {
			continue
		}
		var bookings []models.Booking
		if err := bc.DB.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		if scheduling.ActiveBooking(bookings, at) != nil {
			continue
		}
		if table.Size == recommended {
			recommendedSizeMet = true
		}
		available = append(available, table)
	}
	models.SortTables(available)

	utils.RespondJSON(c, http.StatusOK, "Available tables", gin.H{
		"tables":             available,
		"recommendedSize":    recommended,
		"recommendedSizeMet": recommendedSizeMet,
	})
}

// GetUpcomingForTable lists future bookings for one table, optionally
// narrowed to a date, soonest first.
func (bc *BookingController) GetUpcomingForTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var req struct {
		IsTodaysBooking bool   `json:"isTodaysBooking"`
		BookingDate     string `json:"bookingDate" binding:"omitempty,datetime=2006-01-02"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var bookings []models.Booking
	if err := bc.DB.Where("table_id = ?", tableID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	upcoming := scheduling.UpcomingBookings(bookings, now)

	date := req.BookingDate
	if req.IsTodaysBooking {
		date = now.Format("2006-01-02")
	}
	if date != "" {
		filtered := upcoming[:0]
		for _, b := range upcoming {
			if b.EffectiveStart().Format("2006-01-02") == date {
				filtered = append(filtered, b)
			}
		}
		upcoming = filtered
	}
	utils.RespondJSON(c, http.StatusOK, "Upcoming bookings for table", upcoming)
}

// CancelBooking is idempotent against double submits: a second cancel finds
// a terminal booking and reports not-found instead of re-running side
// effects.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	bc.finishBooking(c, models.BookingCancelled, events.EventBookingCancelled, "Booking cancelled")
}

func (bc *BookingController) CompleteBooking(c *gin.Context) {
	bc.finishBooking(c, models.BookingCompleted, events.EventBookingUpdated, "Booking completed")
}

func (bc *BookingController) finishBooking(c *gin.Context, terminal models.BookingStatus, event, message string) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := bc.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.IsTerminal() {
		utils.RespondError(c, http.StatusNotFound, ErrBookingFinished)
		return
	}

	unlock := tableLocks.Lock(booking.TableID)
	defer unlock()

	booking.Status = terminal
	if terminal == models.BookingCancelled {
		booking.ConfirmationStatus = models.ConfirmationCancelled
	}
	if err := bc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Freeing or re-booking the table is the sync pass's policy; run it for
	// just this table so the response reflects the corrected status.
	if _, err := services.SyncTable(bc.DB, booking.TableID, time.Now()); err != nil {
		utils.ErrorLogger.Printf("Sync after %s of booking %s: %v", terminal, booking.ID, err)
	}

	events.Broadcast(event, booking)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("%s: %s (%s)", message, booking.ID, booking.CustomerName)
	utils.RespondJSON(c, http.StatusOK, message, booking)
}

// ReassignTable moves a live booking to another table, conflict-checked on
// the target; the old table is freed by reconciliation.
func (bc *BookingController) ReassignTable(c *gin.Context) {
	bookingID := c.Param("booking_id")
	var req struct {
		NewTableID string `json:"newTableId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var booking models.Booking
	if err := bc.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.IsTerminal() {
		utils.RespondError(c, http.StatusNotFound, ErrBookingFinished)
		return
	}

	var newTable models.Table
	if err := bc.DB.First(&newTable, "id = ?", req.NewTableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.PeopleCount > newTable.Seats {
		utils.RespondError(c, http.StatusBadRequest, errCapacity)
		return
	}

	// Both tables change; take the locks in a stable order so two opposing
	// reassignments cannot deadlock.
	first, second := booking.TableID, newTable.ID
	if second < first {
		first, second = second, first
	}
	unlockFirst := tableLocks.Lock(first)
	defer unlockFirst()
	if first != second {
		unlockSecond := tableLocks.Lock(second)
		defer unlockSecond()
	}

	var targetBookings []models.Booking
	if err := bc.DB.Where("table_id = ?", newTable.ID).Find(&targetBookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	window := scheduling.Window(&booking)
	if conflict := scheduling.FindConflict(targetBookings, window); conflict != nil {
		suggested, suggestErr := scheduling.SuggestStart(targetBookings, window, bc.Lookahead)
		var suggestedPtr *time.Time
		estimated := 0
		if suggestErr == nil {
			suggestedPtr = &suggested
			estimated = minutesUntil(suggested, now)
		}
		utils.RespondConflict(c, "Target table is not free for this window", conflict, suggestedPtr, estimated)
		return
	}

	oldTableID := booking.TableID
	booking.TableID = newTable.ID
	if err := bc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	for _, id := range []string{oldTableID, newTable.ID} {
		if _, err := services.SyncTable(bc.DB, id, now); err != nil {
			utils.ErrorLogger.Printf("Sync after reassign of booking %s: %v", booking.ID, err)
		}
	}

	events.Broadcast(events.EventBookingUpdated, booking)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("Booking %s reassigned from table %s to %s", booking.ID, oldTableID, newTable.ID)
	utils.RespondJSON(c, http.StatusOK, "Booking reassigned", booking)
}

// OverrideBooking bumps an existing booking to the waiting list (with raised
// priority) and seats the new party in its place. Used when staff decide the
// walk-in in front of them wins over a no-show. The replacement is validated
// in full first; a party that cannot be seated leaves the bumped booking and
// the waiting list untouched.
func (bc *BookingController) OverrideBooking(c *gin.Context) {
	var req struct {
		createBookingRequest
		ConflictingBookingID string `json:"conflictingBookingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	start, err := resolveStart(req.BookingTime, req.BookingDate, req.BookingTimeSlot, now)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}
	bookingType := models.BookingType(req.BookingType)
	if bookingType == "" {
		bookingType = models.WalkIn
	}

	var bumped models.Booking
	if err := bc.DB.First(&bumped, "id = ?", req.ConflictingBookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if bumped.IsTerminal() {
		utils.RespondError(c, http.StatusNotFound, ErrBookingFinished)
		return
	}

	var table models.Table
	if err := bc.DB.First(&table, "id = ?", req.TableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if req.PeopleCount > table.Seats {
		utils.RespondError(c, http.StatusBadRequest, errCapacity)
		return
	}

	// Both schedules may change; take the locks in a stable order, as in
	// reassign.
	first, second := bumped.TableID, table.ID
	if second < first {
		first, second = second, first
	}
	unlockFirst := tableLocks.Lock(first)
	defer unlockFirst()
	if first != second {
		unlockSecond := tableLocks.Lock(second)
		defer unlockSecond()
	}

	var bookings []models.Booking
	if err := bc.DB.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// The bumped booking's slot is the one being reclaimed; a remaining
	// conflict comes from a third party and blocks the override before
	// anything is written.
	others := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.ID != bumped.ID {
			others = append(others, b)
		}
	}

	candidate := scheduling.Span(start, duration)
	autoScheduled := false
	if conflict := scheduling.FindConflict(others, candidate); conflict != nil {
		suggested, suggestErr := scheduling.SuggestStart(others, candidate, bc.Lookahead)

		if !req.ConfirmAutoSchedule {
			var suggestedPtr *time.Time
			estimated := 0
			if suggestErr == nil {
				suggestedPtr = &suggested
				estimated = minutesUntil(suggested, now)
			}
			utils.RespondConflict(c, "Requested time overlaps another booking",
				conflict, suggestedPtr, estimated)
			return
		}
		if suggestErr != nil {
			utils.RespondConflict(c, "No free slot within the scheduling window",
				conflict, nil, 0)
			return
		}
		start = suggested
		candidate = scheduling.Span(start, duration)
		autoScheduled = true
	}

	entry := models.WaitingList{
		CustomerName:       bumped.CustomerName,
		Mobile:             bumped.Mobile,
		Email:              bumped.Email,
		PeopleCount:        bumped.PeopleCount,
		PreferredTableSize: models.RecommendedSize(bumped.PeopleCount),
		BookingType:        bumped.BookingType,
		BookingDate:        bumped.BookingDate,
		BookingTimeSlot:    bumped.BookingTimeSlot,
		Priority:           bumped.Priority + 1,
		Status:             models.WaitingWaiting,
	}
	booking := models.Booking{
		TableID:            table.ID,
		CustomerName:       req.CustomerName,
		Mobile:             req.Mobile,
		Email:              req.Email,
		PeopleCount:        req.PeopleCount,
		BookingTime:        start,
		BookingDate:        req.BookingDate,
		BookingTimeSlot:    req.BookingTimeSlot,
		DurationMinutes:    duration,
		BookingType:        bookingType,
		Status:             models.BookingBooked,
		ConfirmationStatus: models.ConfirmationPending,
		Priority:           req.Priority,
		NotificationsSent:  "[]",
	}

	// Cancel, enqueue and re-book as one write: either the whole swap lands
	// or none of it does.
	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		bumped.Status = models.BookingCancelled
		bumped.ConfirmationStatus = models.ConfirmationCancelled
		if err := tx.Save(&bumped).Error; err != nil {
			return err
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if candidate.Contains(now) && table.Status == models.TableAvailable {
		if err := scheduling.Transition(&table, models.TableBooked, false, now); err == nil {
			if err := bc.DB.Save(&table).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, err)
				return
			}
			events.Broadcast(events.EventTableStatusUpdated, table)
		}
	}

	events.Broadcast(events.EventBookingCancelled, bumped)
	events.Broadcast(events.EventWaitingListUpdated, entry)
	events.Broadcast(events.EventBookingCreated, booking)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("Booking %s overridden; %s moved to waiting list with priority %d",
		bumped.ID, bumped.CustomerName, entry.Priority)

	utils.RespondJSON(c, http.StatusCreated, "Booking created successfully", gin.H{
		"booking":       booking,
		"autoScheduled": autoScheduled,
	})
}

func (bc *BookingController) SyncStatuses(c *gin.Context) {
	summary, err := services.SyncTableStatuses(bc.DB, time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table statuses synchronized", summary)
}
