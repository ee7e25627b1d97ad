package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/service"
)

// AnswerHandler holds dependencies for answer endpoints.
type AnswerHandler struct {
	logger     *zap.Logger
	answerServ *service.AnswerService
}

func NewAnswerHandler(logger *zap.Logger, answerServ *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{logger: logger, answerServ: answerServ}
}

// CreateAnswer handles POST /questions/:id/answers.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answer, err := h.answerServ.CreateAnswer(c.Request.Context(), service.CreateAnswerInput{
		QuestionID: c.Param("id"),
		AuthorID:   claims.UserID,
		Content:    req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		case errors.Is(err, service.ErrInvalidAnswer):
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		default:
			h.logger.Error("create answer failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create answer"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"answer": answer})
}

// ListAnswers handles GET /questions/:id/answers.
func (h *AnswerHandler) ListAnswers(c *gin.Context) {
	answers, err := h.answerServ.ListAnswers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("list answers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list answers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// AcceptAnswer handles POST /answers/:id/accept.
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	answer, err := h.answerServ.AcceptAnswer(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerNotFound), errors.Is(err, service.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		case errors.Is(err, service.ErrNotQuestionOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the question author can accept"})
			return
		case errors.Is(err, service.ErrAlreadyAccepted):
			c.JSON(http.StatusConflict, gin.H{"error": "answer already accepted"})
			return
		default:
			h.logger.Error("accept answer failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept answer"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// MarkHelpful handles POST /answers/:id/helpful.
func (h *AnswerHandler) MarkHelpful(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	answer, err := h.answerServ.MarkHelpful(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "answer not found"})
			return
		case errors.Is(err, service.ErrSelfVote):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot mark your own answer as helpful"})
			return
		case errors.Is(err, service.ErrAlreadyHelpful):
			c.JSON(http.StatusConflict, gin.H{"error": "answer already marked as helpful"})
			return
		default:
			h.logger.Error("mark helpful failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark answer as helpful"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// VoteAnswer handles POST /answers/:id/vote.
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		VoteType string `json:"vote_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid vote request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.answerServ.VoteAnswer(c.Request.Context(), c.Param("id"), claims.UserID, req.VoteType)
	if err != nil {
		writeVoteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": result})
}

// AnswerQuality handles GET /answers/:id/quality.
func (h *AnswerHandler) AnswerQuality(c *gin.Context) {
	score, err := h.answerServ.EvaluateQuality(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "answer not found"})
			return
		}
		h.logger.Error("evaluate quality failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not evaluate quality"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quality_score": score})
}
