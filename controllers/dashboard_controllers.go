package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

func (dc *DashboardController) GetStats(c *gin.Context) {
	var totalFloors, totalTables, available, booked, occupied int64
	dc.DB.Model(&models.Floor{}).Count(&totalFloors)
	dc.DB.Model(&models.Table{}).Count(&totalTables)
	dc.DB.Model(&models.Table{}).Where("status = ?", models.TableAvailable).Count(&available)
	dc.DB.Model(&models.Table{}).Where("status = ?", models.TableBooked).Count(&booked)
	dc.DB.Model(&models.Table{}).Where("status = ?", models.TableOccupied).Count(&occupied)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var todayCount int64
	var totalGuests int64
	dc.DB.Model(&models.Booking{}).
		Where("booking_time >= ? AND booking_time < ?", dayStart, dayEnd).
		Where("status <> ?", models.BookingCancelled).
		Count(&todayCount)
	dc.DB.Model(&models.Booking{}).
		Where("booking_time >= ? AND booking_time < ?", dayStart, dayEnd).
		Where("status <> ?", models.BookingCancelled).
		Select("COALESCE(SUM(people_count), 0)").Scan(&totalGuests)

	var floors []models.Floor
	if err := dc.DB.Preload("Tables").Order("floor_number ASC").Find(&floors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	floorStats := make([]gin.H, 0, len(floors))
	for _, f := range floors {
		floorStats = append(floorStats, gin.H{
			"floorId":     f.ID,
			"floorName":   f.Name,
			"totalTables": len(f.Tables),
		})
	}

	sizeStats := gin.H{}
	for _, size := range []models.TableSize{models.SizeSmall, models.SizeMedium, models.SizeLarge} {
		var count int64
		dc.DB.Model(&models.Table{}).Where("size = ?", size).Count(&count)
		sizeStats[string(size)] = count
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"summary": gin.H{
			"totalFloors":       totalFloors,
			"totalTables":       totalTables,
			"availableTables":   available,
			"bookedTables":      booked,
			"occupiedTables":    occupied,
			"todayBookingCount": todayCount,
			"totalGuestsToday":  totalGuests,
		},
		"floorStats": floorStats,
		"sizeStats":  sizeStats,
	})
}
