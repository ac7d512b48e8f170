package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sikshyahq/sikshya-backend/internal/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (lh *LeaderboardHandler) GetWeekly(c *gin.Context) {
	scope := c.DefaultQuery("scope", services.LeaderboardScopeGlobal)

	var courseID *uuid.UUID
	if raw := c.Query("course_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "course_id must be a valid uuid"})
			return
		}
		courseID = &parsed
	}

	entries, err := lh.leaderboardService.GetWeekly(c.Request.Context(), scope, courseID, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
