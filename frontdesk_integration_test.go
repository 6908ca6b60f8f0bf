package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kanuma/frontdesk/middlewares"
	"github.com/kanuma/frontdesk/models"
	"github.com/kanuma/frontdesk/router"
	"github.com/kanuma/frontdesk/services"
	"github.com/kanuma/frontdesk/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func request(t *testing.T, r *gin.Engine, method, url string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		buf = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

// TestFrontDeskFlow walks a full evening at the front desk: set up the room,
// take a booking, hit a conflict, queue a second party, seat them via
// auto-schedule, complete the first booking, and reconcile table state.
func TestFrontDeskFlow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Floor{}, &models.Table{}, &models.Booking{}, &models.WaitingList{}))

	r := router.SetupRouter(db, 12*time.Hour, middlewares.NewRateLimiter(10000, 1))

	// 1. Room setup.
	w, resp := request(t, r, "POST", "/api/floors", map[string]interface{}{
		"name": "Main Hall", "floorNumber": 1,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	floorID := resp["data"].(map[string]interface{})["id"].(string)

	w, resp = request(t, r, "POST", "/api/tables", map[string]interface{}{
		"tableNumber": "T1", "size": "MEDIUM", "seats": 4, "floorId": floorID,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	tableID := resp["data"].(map[string]interface{})["id"].(string)

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	// 2. First booking lands cleanly.
	w, resp = request(t, r, "POST", "/api/bookings", map[string]interface{}{
		"tableId":         tableID,
		"customerName":    "Priya Nair",
		"mobile":          "9876500001",
		"peopleCount":     3,
		"bookingTime":     base.Format(time.RFC3339),
		"durationMinutes": 60,
		"bookingType":     "PRE_BOOKING",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	firstID := resp["data"].(map[string]interface{})["booking"].(map[string]interface{})["id"].(string)

	// 3. An overlapping request is refused with a workable alternative.
	w, resp = request(t, r, "POST", "/api/bookings", map[string]interface{}{
		"tableId":         tableID,
		"customerName":    "Rahul Dev",
		"mobile":          "9876500002",
		"peopleCount":     2,
		"bookingTime":     base.Add(30 * time.Minute).Format(time.RFC3339),
		"durationMinutes": 60,
		"bookingType":     "PRE_BOOKING",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	suggested, err := time.Parse(time.RFC3339, resp["suggestedTime"].(string))
	assert.NoError(t, err)
	assert.True(t, suggested.Equal(base.Add(65*time.Minute)))

	// 4. The refused party joins the waiting list instead.
	w, resp = request(t, r, "POST", "/api/waitinglist", map[string]interface{}{
		"customerName":       "Rahul Dev",
		"mobile":             "9876500002",
		"peopleCount":        2,
		"preferredTableSize": "MEDIUM",
		"bookingType":        "PRE_BOOKING",
		"bookingDate":        base.Format("2006-01-02"),
		"bookingTimeSlot":    base.Format("15:04"),
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	entryID := resp["data"].(map[string]interface{})["id"].(string)

	// 5. Staff notify them, then seat them with auto-schedule.
	w, _ = request(t, r, "PUT", "/api/waitinglist/"+entryID+"/notify", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = request(t, r, "POST", "/api/waitinglist/"+entryID+"/assign", map[string]interface{}{
		"tableId":      tableID,
		"autoSchedule": true,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assigned := resp["data"].(map[string]interface{})
	start, err := time.Parse(time.RFC3339Nano, assigned["bookingTime"].(string))
	assert.NoError(t, err)
	assert.True(t, start.Equal(base.Add(65*time.Minute)))

	var entry models.WaitingList
	assert.NoError(t, db.First(&entry, "id = ?", entryID).Error)
	assert.Equal(t, models.WaitingAssigned, entry.Status)

	// 6. The first booking confirms, then finishes.
	w, _ = request(t, r, "PUT", "/api/notifications/"+firstID+"/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = request(t, r, "PUT", "/api/bookings/"+firstID+"/complete", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 7. Reconciliation agrees: both bookings are in the future or done,
	// so the table sits AVAILABLE.
	summary, err := services.SyncTableStatuses(db, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)

	var table models.Table
	assert.NoError(t, db.First(&table, "id = ?", tableID).Error)
	assert.Equal(t, models.TableAvailable, table.Status)

	// 8. Dashboard reflects the evening.
	w, resp = request(t, r, "GET", "/api/dashboard/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	stats := resp["data"].(map[string]interface{})
	summaryStats := stats["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summaryStats["totalTables"])
}
