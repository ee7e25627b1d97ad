package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/service"
)

// NotificationHandler holds dependencies for notification endpoints.
type NotificationHandler struct {
	logger    *zap.Logger
	notifServ *service.NotificationService
}

func NewNotificationHandler(logger *zap.Logger, notifServ *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{logger: logger, notifServ: notifServ}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.notifServ.List(c.Request.Context(), claims.UserID, unreadOnly,
		parseIntQuery(c, "limit", 20), parseIntQuery(c, "offset", 0))
	if err != nil {
		h.logger.Error("list notifications failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list notifications"})
		return
	}

	count, err := h.notifServ.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Warn("unread count failed", zap.Error(err))
		count = 0
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread_count": count})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.notifServ.MarkRead(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, service.ErrNotificationsUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "notifications unavailable"})
			return
		}
		h.logger.Error("mark read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.notifServ.MarkAllRead(c.Request.Context(), claims.UserID); err != nil {
		h.logger.Error("mark all read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}
