package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/events"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/utils"
)

type FloorController struct {
	DB *gorm.DB
}

func NewFloorController(db *gorm.DB) *FloorController {
	return &FloorController{DB: db}
}

func (fc *FloorController) CreateFloor(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		FloorNumber int    `json:"floorNumber" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	floor := models.Floor{
		Name:        req.Name,
		FloorNumber: req.FloorNumber,
	}
	if err := fc.DB.Create(&floor).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.Broadcast(events.EventFloorCreated, floor)
	utils.InfoLogger.Printf("Floor created: %s (#%d)", floor.Name, floor.FloorNumber)
	utils.RespondJSON(c, http.StatusCreated, "Floor created successfully", floor)
}

func (fc *FloorController) GetAllFloors(c *gin.Context) {
	var floors []models.Floor
	if err := fc.DB.Order("floor_number ASC").Find(&floors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of floors", floors)
}

// GetFloorsWithTables returns every floor with its tables in display order
// (numeric-aware table numbers, per floor not globally).
func (fc *FloorController) GetFloorsWithTables(c *gin.Context) {
	var floors []models.Floor
	if err := fc.DB.Preload("Tables").Order("floor_number ASC").Find(&floors).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	for i := range floors {
		models.SortTables(floors[i].Tables)
	}
	utils.RespondJSON(c, http.StatusOK, "Floors with tables", floors)
}
