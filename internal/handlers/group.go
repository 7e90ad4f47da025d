package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
	"social-chat-service/internal/ws"
)

// GroupHandler manages group-chat lifecycle and membership endpoints.
type GroupHandler struct {
	groupRepo repositories.GroupRepository
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, hub: hub, audit: audit}
}

// CreateGroup handles POST /chats/groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		Title     string `json:"title" binding:"required"`
		FriendIDs []int  `json:"friend_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.groupRepo.CreateGroupChat(c.Request.Context(), userID, req.Title, req.FriendIDs)
	if err != nil {
		h.emitAudit(c, "ERROR", "group creation rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Group created")
	c.JSON(http.StatusCreated, chat)
}

// AddMembers handles POST /chats/:chat_id/members.
func (h *GroupHandler) AddMembers(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		FriendIDs []int `json:"friend_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.groupRepo.AddMembers(c.Request.Context(), chatID, userID, req.FriendIDs)
	if err != nil {
		h.emitAudit(c, "ERROR", "member addition rejected")
		respondError(c, err)
		return
	}

	for _, id := range added {
		h.hub.BroadcastMemberAdded(chatID, id)
	}
	h.emitAudit(c, "INFO", "Group members added")
	c.JSON(http.StatusOK, gin.H{"added_user_ids": added})
}

// GetMembers handles GET /chats/:chat_id/members.
func (h *GroupHandler) GetMembers(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	members, err := h.groupRepo.GetMembers(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if members == nil {
		members = []models.ChatParticipant{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// RemoveMember handles DELETE /chats/:chat_id/members/:user_id.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	chatID, targetID, ok := parseChatAndUserIDs(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groupRepo.RemoveMember(c.Request.Context(), chatID, userID, targetID); err != nil {
		h.emitAudit(c, "ERROR", "member removal rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastMemberRemoved(chatID, targetID)
	h.emitAudit(c, "INFO", "Group member removed")
	c.JSON(http.StatusOK, gin.H{"removed_user_id": targetID})
}

// Leave handles POST /chats/:chat_id/leave. A departing creator hands
// the role over; the last member dissolves the group.
func (h *GroupHandler) Leave(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	result, err := h.groupRepo.Leave(c.Request.Context(), chatID, userID)
	if err != nil {
		h.emitAudit(c, "ERROR", "group leave rejected")
		respondError(c, err)
		return
	}

	if result.Dissolved {
		h.emitAudit(c, "INFO", "Group dissolved")
		c.JSON(http.StatusOK, gin.H{"message": "You were the only member. Group deleted."})
		return
	}

	h.hub.BroadcastMemberRemoved(chatID, userID)
	if result.NewCreatorID != 0 {
		h.hub.BroadcastRoleChanged(chatID, result.NewCreatorID, models.RoleCreator)
		h.emitAudit(c, "INFO", "Group creator left, role handed over")
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("You left the group. New creator is user %d", result.NewCreatorID)})
		return
	}

	h.emitAudit(c, "INFO", "Group member left")
	c.JSON(http.StatusOK, gin.H{"message": "You have left the group"})
}

// Promote handles POST /chats/:chat_id/members/:user_id/promote.
func (h *GroupHandler) Promote(c *gin.Context) {
	chatID, targetID, ok := parseChatAndUserIDs(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groupRepo.Promote(c.Request.Context(), chatID, userID, targetID); err != nil {
		h.emitAudit(c, "ERROR", "promotion rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastRoleChanged(chatID, targetID, models.RoleAdmin)
	h.emitAudit(c, "INFO", "Group member promoted")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %d has been promoted to admin", targetID)})
}

// Demote handles POST /chats/:chat_id/members/:user_id/demote.
func (h *GroupHandler) Demote(c *gin.Context) {
	chatID, targetID, ok := parseChatAndUserIDs(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if err := h.groupRepo.Demote(c.Request.Context(), chatID, userID, targetID); err != nil {
		h.emitAudit(c, "ERROR", "demotion rejected")
		respondError(c, err)
		return
	}

	h.hub.BroadcastRoleChanged(chatID, targetID, models.RoleParticipant)
	h.emitAudit(c, "INFO", "Group member demoted")
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %d has been demoted to participant", targetID)})
}

// Rename handles PUT /chats/:chat_id/title.
func (h *GroupHandler) Rename(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.groupRepo.Rename(c.Request.Context(), chatID, userID, req.Title)
	if err != nil {
		h.emitAudit(c, "ERROR", "rename rejected")
		respondError(c, err)
		return
	}

	newTitle := ""
	if chat.Title != nil {
		newTitle = *chat.Title
	}
	h.hub.BroadcastTitleChanged(chatID, newTitle)
	h.emitAudit(c, "INFO", "Group title updated")
	c.JSON(http.StatusOK, gin.H{"message": "Group title updated successfully", "new_title": newTitle})
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}

func parseChatID(c *gin.Context) (int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, false
	}
	return chatID, true
}

func parseChatAndUserIDs(c *gin.Context) (int, int, bool) {
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
		return 0, 0, false
	}
	targetID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, 0, false
	}
	return chatID, targetID, true
}
