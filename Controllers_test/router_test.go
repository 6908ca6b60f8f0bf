package Controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kanuma/frontdesk/middlewares"
	"github.com/kanuma/frontdesk/router"
)

func TestPingReportsConnectedClients(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	w, resp := doJSON(t, r, "GET", "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", resp["message"])
	assert.Equal(t, float64(0), resp["clients"])
}

func TestGlobalRateLimiterCoversRoutes(t *testing.T) {
	db := setupTestDB(t)
	r := router.SetupRouter(db, 12*time.Hour, middlewares.NewRateLimiter(2, 60))

	w, _ := doJSON(t, r, "GET", "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, "GET", "/api/floors", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Third request within the window is over budget, whatever the route.
	w, _ = doJSON(t, r, "GET", "/api/bookings", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
