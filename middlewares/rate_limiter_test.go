package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ping(t *testing.T, r *gin.Engine) int {
	t.Helper()
	req, err := http.NewRequest("GET", "/ping", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitBlocksPastBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(3, 60).RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ping(t, r))
	}
	assert.Equal(t, http.StatusTooManyRequests, ping(t, r))
}

func TestStrictRateLimiterBlocksBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewStrictRateLimiter())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	// The token bucket holds a burst of 10, refilled once per second.
	blocked := 0
	for i := 0; i < 20; i++ {
		if ping(t, r) == http.StatusTooManyRequests {
			blocked++
		}
	}
	assert.Greater(t, blocked, 0)
}
