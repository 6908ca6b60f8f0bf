package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/controllers"
	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/middlewares"
)

// registerValidations adds the booking-duration rule to gin's validator:
// at least 15 minutes, in 15-minute steps.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slot15", func(fl validator.FieldLevel) bool {
			minutes := fl.Field().Int()
			return minutes >= 15 && minutes%15 == 0
		})
	}
}

func SetupRouter(db *gorm.DB, lookahead time.Duration, limiter *middlewares.RateLimiter) *gin.Engine {
	registerValidations()

	r := gin.Default()
	r.Use(middlewares.CORSMiddleware())
	r.Use(middlewares.LoggerMiddleware())
	// Middleware added after route registration never runs; the limiter has
	// to go on before the first route.
	r.Use(limiter.RateLimit())

	floorCtrl := controllers.NewFloorController(db)
	tableCtrl := controllers.NewTableController(db)
	bookingCtrl := controllers.NewBookingController(db, lookahead)
	waitingCtrl := controllers.NewWaitingListController(db, lookahead)
	notificationCtrl := controllers.NewNotificationController(db)
	dashboardCtrl := controllers.NewDashboardController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong", "clients": events.ClientCount()})
	})

	// Push channel for the front-of-house client.
	r.GET("/ws", controllers.WSHandler)

	api := r.Group("/api")

	// Floor/table management is rare and script-prone; keep it behind the
	// strict limiter.
	admin := api.Group("/")
	admin.Use(middlewares.NewStrictRateLimiter())
	{
		admin.POST("/floors", floorCtrl.CreateFloor)
		admin.POST("/tables", tableCtrl.CreateTable)
	}

	// FLOORS
	api.GET("/floors", floorCtrl.GetAllFloors)
	api.GET("/floors/with-tables", floorCtrl.GetFloorsWithTables)

	// TABLES
	api.GET("/tables/floor/:floor_id", tableCtrl.GetTablesByFloor)
	api.GET("/tables/statuses-for-datetime", tableCtrl.GetStatusesForDateTime)
	api.PUT("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
	api.PUT("/tables/:table_id/availability", tableCtrl.UpdateTableAvailability)
	api.GET("/tables/:table_id/booking", tableCtrl.GetActiveBooking)
	api.GET("/tables/:table_id/bookings/all", tableCtrl.GetAllTableBookings)

	// BOOKINGS
	api.POST("/bookings", bookingCtrl.CreateBooking)
	api.GET("/bookings", bookingCtrl.GetAllBookings)
	api.GET("/bookings/by-date", bookingCtrl.GetBookingsByDate)
	api.GET("/bookings/available", bookingCtrl.GetAvailableTables)
	api.POST("/bookings/table/:table_id/upcoming", bookingCtrl.GetUpcomingForTable)
	api.PUT("/bookings/:booking_id/cancel", bookingCtrl.CancelBooking)
	api.PUT("/bookings/:booking_id/complete", bookingCtrl.CompleteBooking)
	api.PUT("/bookings/:booking_id/reassign", bookingCtrl.ReassignTable)
	api.POST("/bookings/override", bookingCtrl.OverrideBooking)
	api.POST("/bookings/sync-statuses", bookingCtrl.SyncStatuses)

	// WAITING LIST
	api.POST("/waitinglist", waitingCtrl.AddToWaitingList)
	api.GET("/waitinglist", waitingCtrl.GetWaitingList)
	api.POST("/waitinglist/:waiting_id/check-conflict", waitingCtrl.CheckAssignConflict)
	api.POST("/waitinglist/:waiting_id/assign", waitingCtrl.AssignTable)
	api.PUT("/waitinglist/:waiting_id/notify", waitingCtrl.NotifyCustomer)
	api.PUT("/waitinglist/:waiting_id/cancel", waitingCtrl.CancelEntry)

	// NOTIFICATIONS
	api.GET("/notifications/pending", notificationCtrl.GetPendingNotifications)
	api.PUT("/notifications/:booking_id/confirm", notificationCtrl.ConfirmBooking)
	api.PUT("/notifications/:booking_id/delay", notificationCtrl.MarkClientDelayed)

	// DASHBOARD
	api.GET("/dashboard/stats", dashboardCtrl.GetStats)

	return r
}
