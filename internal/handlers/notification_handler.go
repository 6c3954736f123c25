package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var notifs []models.Notification
	if err := h.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_notifications", "Could not list notifications.")
		return
	}

	var unread int64
	h.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifs,
		"unread":        unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid notification id.")
		return
	}

	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", uint(id), userID).
		Update("read", true)

	if res.Error != nil {
		httperr.Internal(c, "failed_to_mark_read", "Could not update the notification.")
		return
	}

	if res.RowsAffected == 0 {
		httperr.NotFound(c, "notification_not_found", "Notification not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = false", userID).
		Update("read", true).Error; err != nil {

		httperr.Internal(c, "failed_to_mark_read", "Could not update notifications.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
