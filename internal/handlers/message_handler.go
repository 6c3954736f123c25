package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/httperr"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/models"
	"github.com/townbook-za/townbook/internal/notify"
)

type MessageHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewMessageHandler(db *gorm.DB, notifier *notify.Notifier) *MessageHandler {
	return &MessageHandler{db: db, notifier: notifier}
}

type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required,max=1000"`
}

// ConversationSummary is one row of the inbox: the other party, the last
// message exchanged and how many of theirs are still unread.
type ConversationSummary struct {
	UserID      uint            `json:"user_id"`
	UserName    string          `json:"user_name"`
	LastMessage *models.Message `json:"last_message"`
	Unread      int64           `json:"unread"`
}

// ======================================================
// SEND
// ======================================================

func (h *MessageHandler) Send(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.ReceiverID == userID {
		httperr.BadRequest(c, "self_message", "You cannot message yourself.")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		httperr.BadRequest(c, "empty_message", "The message is empty.")
		return
	}

	var receiver models.User
	if err := h.db.Where("id = ? AND active = true", req.ReceiverID).First(&receiver).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Recipient not found.")
		return
	}

	msg := models.Message{
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Content:    content,
	}

	if err := h.db.Create(&msg).Error; err != nil {
		httperr.Internal(c, "failed_to_send_message", "Could not send the message.")
		return
	}

	h.notifier.PublishMessage(c.Request.Context(), &msg)

	c.JSON(http.StatusCreated, msg)
}

// ======================================================
// INBOX
// ======================================================

func (h *MessageHandler) ListConversations(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	// Distinct counterparties, most recent exchange first.
	var partnerIDs []uint
	if err := h.db.Model(&models.Message{}).
		Select("DISTINCT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Scan(&partnerIDs).Error; err != nil {

		httperr.Internal(c, "failed_to_list_conversations", "Could not list conversations.")
		return
	}

	summaries := make([]ConversationSummary, 0, len(partnerIDs))
	for _, partnerID := range partnerIDs {
		var partner models.User
		if err := h.db.First(&partner, partnerID).Error; err != nil {
			continue
		}

		var last models.Message
		if err := h.db.
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				userID, partnerID, partnerID, userID).
			Order("created_at DESC").
			First(&last).Error; err != nil {
			continue
		}

		var unread int64
		h.db.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND read = false", partnerID, userID).
			Count(&unread)

		summaries = append(summaries, ConversationSummary{
			UserID:      partner.ID,
			UserName:    partner.Name,
			LastMessage: &last,
			Unread:      unread,
		})
	}

	c.JSON(http.StatusOK, summaries)
}

// ======================================================
// THREAD
// ======================================================

func (h *MessageHandler) GetThread(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	partnerID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid user id.")
		return
	}

	var msgs []models.Message
	if err := h.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {

		httperr.Internal(c, "failed_to_get_thread", "Could not load the conversation.")
		return
	}

	// Opening a thread marks the counterparty's messages read.
	h.db.Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read = false", partnerID, userID).
		Update("read", true)

	c.JSON(http.StatusOK, msgs)
}
