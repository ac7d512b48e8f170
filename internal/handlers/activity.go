package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/requestdata"
	"github.com/sikshyahq/sikshya-backend/internal/services"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Ping records a throttled "still active" signal for a note. Validation
// happens before any transaction begins.
func (ah *ActivityHandler) Ping(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var body struct {
		NoteID    string `json:"note_id"`
		EventType string `json:"event_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	noteID, err := uuid.Parse(body.NoteID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note_id must be a valid uuid"})
		return
	}

	result, err := ah.activityService.RecordPing(c.Request.Context(), rd.UserID, noteID, body.EventType, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
