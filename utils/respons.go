package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// EstimatedWait is quoted to the customer before offering the waiting list.
type EstimatedWait struct {
	EstimatedMinutes int `json:"estimatedMinutes"`
}

// RespondConflict uses a flat body (no Data envelope) because the client reads
// conflict, suggestedTime and estimatedWaitTime directly off the error JSON.
// suggestedTime is nil when no conflict-free slot exists within the lookahead.
func RespondConflict(c *gin.Context, message string, conflict interface{}, suggestedTime *time.Time, estimatedMinutes int) {
	body := gin.H{
		"status":            false,
		"message":           message,
		"conflict":          conflict,
		"estimatedWaitTime": EstimatedWait{EstimatedMinutes: estimatedMinutes},
	}
	if suggestedTime != nil {
		body["suggestedTime"] = suggestedTime.Format(time.RFC3339)
	}
	c.JSON(http.StatusConflict, body)
}
