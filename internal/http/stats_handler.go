package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/service"
)

// StatsHandler serves the community stats snapshot.
type StatsHandler struct {
	logger    *zap.Logger
	statsServ *service.StatsService
}

func NewStatsHandler(logger *zap.Logger, statsServ *service.StatsService) *StatsHandler {
	return &StatsHandler{logger: logger, statsServ: statsServ}
}

// Community handles GET /stats.
func (h *StatsHandler) Community(c *gin.Context) {
	stats, err := h.statsServ.Community(c.Request.Context())
	if err != nil {
		h.logger.Error("stats snapshot failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
