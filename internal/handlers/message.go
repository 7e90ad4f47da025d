package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
	"social-chat-service/internal/ws"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

// MessageHandler manages message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messageRepo: messageRepo, hub: hub, audit: audit}
}

// SendMessage handles POST /chats/:chat_id/messages.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.SendMessage(c.Request.Context(), chatID, userID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "message rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessage(chatID, msg)
	h.emitAudit(c, "INFO", "Message sent")
	c.JSON(http.StatusCreated, msg)
}

// GetChatMessages handles GET /chats/:chat_id/messages with skip/limit
// pagination: one page of the newest messages, oldest first within the
// page.
func (h *MessageHandler) GetChatMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skip"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultMessageLimit)))
	if err != nil || limit < 1 || limit > maxMessageLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	msgs, total, err := h.messageRepo.ListMessages(c.Request.Context(), chatID, userID, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
		"total":    total,
		"skip":     skip,
		"limit":    limit,
	})
}

// GetMessage handles GET /messages/:message_id.
func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// UpdateMessage handles PUT /messages/:message_id; sender only.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.UpdateMessage(c.Request.Context(), messageID, userID, req.Content)
	if err != nil {
		h.emitAudit(c, "ERROR", "message update rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessageEdited(msg.ChatID, msg)
	h.emitAudit(c, "INFO", "Message updated")
	c.JSON(http.StatusOK, msg)
}

// DeleteMessage handles DELETE /messages/:message_id; sender only.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseMessageID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), messageID, userID); err != nil {
		h.emitAudit(c, "ERROR", "message deletion rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastMessageDeleted(msg.ChatID, messageID)
	h.emitAudit(c, "INFO", "Message deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

func (h *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseMessageID(c *gin.Context) (int, bool) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return 0, false
	}
	return messageID, true
}
