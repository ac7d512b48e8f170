package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sikshyahq/sikshya-backend/internal/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (sh *StatsHandler) GetMyStats(c *gin.Context) {
	stats, err := sh.statsService.GetMyStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
