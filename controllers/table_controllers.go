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

type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"tableNumber" binding:"required"`
		Size        string `json:"size" binding:"required,oneof=SMALL MEDIUM LARGE"`
		Seats       int    `json:"seats" binding:"required,min=1"`
		FloorID     string `json:"floorId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var floor models.Floor
	if err := tc.DB.First(&floor, "id = ?", req.FloorID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Size:        models.TableSize(req.Size),
		Seats:       req.Seats,
		Status:      models.TableAvailable,
		FloorID:     floor.ID,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventTableCreated, table)
	utils.InfoLogger.Printf("Table created: %s (%s, %d seats) on floor %s",
		table.TableNumber, table.Size, table.Seats, floor.Name)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

func (tc *TableController) GetTablesByFloor(c *gin.Context) {
	floorID := c.Param("floor_id")
	var tables []models.Table
	if err := tc.DB.Where("floor_id = ?", floorID).Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	models.SortTables(tables)
	utils.RespondJSON(c, http.StatusOK, "Tables on floor", tables)
}

// UpdateTableStatus is the staff override path: any status can be forced,
// the state machine only records that an override happened so the sync pass
// knows the drift is deliberate.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	tableID := c.Param("table_id")
	var req struct {
		Status string `json:"status" binding:"required,oneof=AVAILABLE BOOKED OCCUPIED"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unlock := tableLocks.Lock(tableID)
	defer unlock()

	var table models.Table
	if err := tc.DB.First(&table, "id = ?", tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := scheduling.Transition(&table, models.TableStatus(req.Status), true, time.Now()); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventTableStatusUpdated, table)
	events.Broadcast(events.EventDashboardUpdated, nil)
	utils.InfoLogger.Printf("Table %s status forced to %s", table.TableNumber, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// UpdateTableAvailability sets or clears the staff ETA override. It does not
// touch the computed booking end; the two estimates live side by side.
func (tc *TableController) UpdateTableAvailability(c *gin.Context) {
	tableID := c.Param("table_id")
	var req struct {
		AvailableInMinutes *int `json:"availableInMinutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, "id = ?", tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table.AvailableInMinutes = req.AvailableInMinutes
	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventTableStatusUpdated, table)
	utils.RespondJSON(c, http.StatusOK, "Table availability updated", table)
}

// GetActiveBooking returns the booking whose window covers now, if any.
func (tc *TableController) GetActiveBooking(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, "id = ?", tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var bookings []models.Booking
	if err := tc.DB.Where("table_id = ?", tableID).Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	active := scheduling.ActiveBooking(bookings, time.Now())
	utils.RespondJSON(c, http.StatusOK, "Active booking for table", active)
}

func (tc *TableController) GetAllTableBookings(c *gin.Context) {
	tableID := c.Param("table_id")
	var bookings []models.Booking
	err := tc.DB.Where("table_id = ?", tableID).
		Where("status NOT IN ?", []models.BookingStatus{models.BookingCancelled, models.BookingCompleted}).
		Order("booking_time ASC").
		Find(&bookings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings for table", bookings)
}

// GetStatusesForDateTime projects every table's status at a future date and
// slot, so the pre-booking form can paint availability without mutating
// anything.
func (tc *TableController) GetStatusesForDateTime(c *gin.Context) {
	bookingDate := c.Query("bookingDate")
	bookingTimeSlot := c.Query("bookingTimeSlot")
	if bookingDate == "" || bookingTimeSlot == "" {
		utils.RespondError(c, http.StatusBadRequest, errMissingDateTime)
		return
	}

	at, err := resolveStart("", bookingDate, bookingTimeSlot, time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	statuses := make([]gin.H, 0, len(tables))
	for _, table := range tables {
		var bookings []models.Booking
		if err := tc.DB.Where("table_id = ?", table.ID).Find(&bookings).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		status := models.TableAvailable
		if scheduling.ActiveBooking(bookings, at) != nil {
			status = models.TableBooked
		}
		statuses = append(statuses, gin.H{
			"tableId":     table.ID,
			"tableNumber": table.TableNumber,
			"status":      status,
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Table statuses for date/time", statuses)
}
