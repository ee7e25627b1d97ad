package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/service"
)

// MatchHandler exposes the expert matching engine over HTTP.
type MatchHandler struct {
	logger    *zap.Logger
	matchServ *service.MatchService
}

func NewMatchHandler(logger *zap.Logger, matchServ *service.MatchService) *MatchHandler {
	return &MatchHandler{logger: logger, matchServ: matchServ}
}

// MatchExperts handles POST /experts/match.
func (h *MatchHandler) MatchExperts(c *gin.Context) {
	var req service.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid match request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.matchServ.MatchExperts(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrMatchRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question and category are required"})
			return
		}
		h.logger.Error("expert matching failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not match experts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
