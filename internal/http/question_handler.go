package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/repository"
	"viet-kconnect/internal/service"
)

// QuestionHandler holds dependencies for question endpoints.
type QuestionHandler struct {
	logger       *zap.Logger
	questionServ *service.QuestionService
}

func NewQuestionHandler(logger *zap.Logger, questionServ *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{logger: logger, questionServ: questionServ}
}

// CreateQuestion handles POST /questions.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Title    string   `json:"title" binding:"required"`
		Content  string   `json:"content"`
		Category string   `json:"category" binding:"required"`
		Tags     []string `json:"tags"`
		Urgency  string   `json:"urgency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid question request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	question, err := h.questionServ.CreateQuestion(c.Request.Context(), service.CreateQuestionInput{
		AuthorID: claims.UserID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Urgency:  req.Urgency,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and category are required"})
			return
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		default:
			h.logger.Error("create question failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create question"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"question": question})
}

// GetQuestion handles GET /questions/:id.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionServ.GetQuestion(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
			return
		}
		h.logger.Error("get question failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load question"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

// ListQuestions handles GET /questions.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	filter := repository.QuestionFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Limit:    parseIntQuery(c, "limit", 20),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	questions, err := h.questionServ.ListQuestions(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list questions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list questions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// Search handles GET /search. Matches are over question titles, contents
// and tags.
func (h *QuestionHandler) Search(c *gin.Context) {
	query := c.Query("q")
	filter := repository.QuestionFilter{
		Category: c.Query("category"),
		Limit:    parseIntQuery(c, "limit", 20),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	questions, err := h.questionServ.SearchQuestions(c.Request.Context(), query, filter)
	if err != nil {
		if errors.Is(err, service.ErrSearchQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "search query must be at least 2 characters"})
			return
		}
		h.logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not run search"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"results": gin.H{
			"questions": gin.H{"data": questions, "count": len(questions)},
		},
	})
}

// VoteQuestion handles POST /questions/:id/vote.
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
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

	result, err := h.questionServ.VoteQuestion(c.Request.Context(), c.Param("id"), claims.UserID, req.VoteType)
	if err != nil {
		writeVoteError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vote": result})
}

func writeVoteError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound), errors.Is(err, service.ErrAnswerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrSelfVote):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot vote on your own post"})
	case errors.Is(err, service.ErrInvalidVote):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vote type"})
	case errors.Is(err, service.ErrNoVoteToCancel):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no vote to cancel"})
	default:
		logger.Error("vote failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register vote"})
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
