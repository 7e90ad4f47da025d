package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
)

// EventHandler manages events and their companion chats.
type EventHandler struct {
	eventRepo repositories.EventRepository
	chatRepo  repositories.ChatRepository
	audit     *telemetry.AuditEmitter
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(eventRepo repositories.EventRepository, chatRepo repositories.ChatRepository, audit *telemetry.AuditEmitter) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, chatRepo: chatRepo, audit: audit}
}

// CreateEvent handles POST /events.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Title          string     `json:"title" binding:"required"`
		Description    *string    `json:"description"`
		StartTime      *time.Time `json:"start_time"`
		ParticipantIDs []int      `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventRepo.CreateEvent(c.Request.Context(), userID, req.Title, req.Description, req.StartTime, req.ParticipantIDs)
	if err != nil {
		h.emitAudit(c, "ERROR", "event creation rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Event created")
	c.JSON(http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID := c.GetInt("userID")
	events, err := h.eventRepo.ListUserEvents(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent handles GET /events/:event_id; returns the event together
// with its companion chat.
func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	event, err := h.eventRepo.GetEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	chat, err := h.chatRepo.GetChat(c.Request.Context(), event.ChatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event": event,
		"chat": gin.H{
			"id":       chat.ID,
			"title":    chat.Title,
			"is_group": chat.IsGroup,
		},
	})
}

// UpdateEvent handles PUT /events/:event_id.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req models.EventUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventRepo.UpdateEvent(c.Request.Context(), eventID, userID, req)
	if err != nil {
		h.emitAudit(c, "ERROR", "event update rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Event updated")
	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/:event_id; event creator only.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.eventRepo.DeleteEvent(c.Request.Context(), eventID, userID); err != nil {
		h.emitAudit(c, "ERROR", "event deletion rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Event deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Event and associated chat deleted successfully"})
}

// AddParticipants handles POST /events/:event_id/participants.
func (h *EventHandler) AddParticipants(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		ParticipantIDs []int `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.eventRepo.AddParticipants(c.Request.Context(), eventID, userID, req.ParticipantIDs)
	if err != nil {
		h.emitAudit(c, "ERROR", "event participant addition rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Event participants added")
	c.JSON(http.StatusOK, gin.H{"added_participant_ids": added})
}

func (h *EventHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseEventID(c *gin.Context) (int, bool) {
	eventID, err := strconv.Atoi(c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return eventID, true
}
