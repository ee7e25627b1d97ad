package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"viet-kconnect/internal/repository"
)

// CategoryHandler serves the read-only category directory.
type CategoryHandler struct {
	logger     *zap.Logger
	categories repository.CategoryRepository
}

func NewCategoryHandler(logger *zap.Logger, categories repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{logger: logger, categories: categories}
}

// List handles GET /categories.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetBySlug handles GET /categories/:slug.
func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		h.logger.Error("get category failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}
