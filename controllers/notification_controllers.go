package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetPendingNotifications lists live bookings still awaiting confirmation,
// soonest first. The reminder sweep pushes alerts for these; this endpoint
// is the pull side for the notification panel.
func (nc *NotificationController) GetPendingNotifications(c *gin.Context) {
	var bookings []models.Booking
	err := nc.DB.Preload("Table").
		Where("status NOT IN ?", []models.BookingStatus{models.BookingCancelled, models.BookingCompleted}).
		Where("confirmation_status = ?", models.ConfirmationPending).
		Order("booking_time ASC").
		Find(&bookings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pending notifications", bookings)
}

// ConfirmBooking records the customer's confirmation and stops further
// upcoming-booking alerts for it.
func (nc *NotificationController) ConfirmBooking(c *gin.Context) {
	bookingID := c.Param("booking_id")

	var booking models.Booking
	if err := nc.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.IsTerminal() {
		utils.RespondError(c, http.StatusNotFound, ErrBookingFinished)
		return
	}

	confirmedAt := time.Now()
	booking.ConfirmationStatus = models.ConfirmationConfirmed
	booking.ConfirmedAt = &confirmedAt
	if err := nc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventBookingConfirmed, booking)
	events.Broadcast(events.EventBookingUpdated, booking)
	utils.InfoLogger.Printf("Booking %s confirmed by %s", booking.ID, booking.CustomerName)
	utils.RespondJSON(c, http.StatusOK, "Booking confirmed", booking)
}

// MarkClientDelayed shifts the booking's effective window by the announced
// delay; conflict checks and auto-scheduling see the shifted window from
// here on.
func (nc *NotificationController) MarkClientDelayed(c *gin.Context) {
	bookingID := c.Param("booking_id")
	var req struct {
		DelayMinutes int `json:"delayMinutes" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var booking models.Booking
	if err := nc.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if booking.IsTerminal() {
		utils.RespondError(c, http.StatusNotFound, ErrBookingFinished)
		return
	}

	booking.ConfirmationStatus = models.ConfirmationClientDelayed
	booking.DelayMinutes = req.DelayMinutes
	if err := nc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventBookingUpdated, booking)
	utils.InfoLogger.Printf("Booking %s delayed by %d minutes", booking.ID, req.DelayMinutes)
	utils.RespondJSON(c, http.StatusOK, "Client delay recorded", booking)
}
