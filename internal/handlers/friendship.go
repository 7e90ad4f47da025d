package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
)

// FriendshipHandler manages friend requests and the friend list.
type FriendshipHandler struct {
	friendshipRepo repositories.FriendshipRepository
	audit          *telemetry.AuditEmitter
}

// NewFriendshipHandler constructs a FriendshipHandler.
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, audit *telemetry.AuditEmitter) *FriendshipHandler {
	return &FriendshipHandler{friendshipRepo: friendshipRepo, audit: audit}
}

// SendFriendRequest handles POST /friends/requests.
func (h *FriendshipHandler) SendFriendRequest(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ReceiverID int `json:"receiver_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friendship, err := h.friendshipRepo.SendRequest(c.Request.Context(), userID, req.ReceiverID)
	if err != nil {
		h.emitAudit(c, "ERROR", "friend request rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Friend request sent")
	c.JSON(http.StatusCreated, friendship)
}

// AcceptFriendRequest handles PUT /friends/requests/:friendship_id/accept.
func (h *FriendshipHandler) AcceptFriendRequest(c *gin.Context) {
	h.updateRequestStatus(c, models.FriendshipAccepted, "Friend request accepted")
}

// RejectFriendRequest handles PUT /friends/requests/:friendship_id/reject.
func (h *FriendshipHandler) RejectFriendRequest(c *gin.Context) {
	h.updateRequestStatus(c, models.FriendshipRejected, "Friend request rejected")
}

func (h *FriendshipHandler) updateRequestStatus(c *gin.Context, status models.FriendshipStatus, auditText string) {
	friendshipID, err := strconv.Atoi(c.Param("friendship_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friendship id"})
		return
	}

	userID := c.GetInt("userID")
	friendship, err := h.friendshipRepo.UpdateRequestStatus(c.Request.Context(), friendshipID, userID, status)
	if err != nil {
		h.emitAudit(c, "ERROR", "friend request update rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", auditText)
	c.JSON(http.StatusOK, friendship)
}

// ListFriends handles GET /friends.
func (h *FriendshipHandler) ListFriends(c *gin.Context) {
	userID := c.GetInt("userID")
	ids, err := h.friendshipRepo.GetFriendIDs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"friend_ids": ids})
}

// ListIncomingRequests handles GET /friends/requests/incoming.
func (h *FriendshipHandler) ListIncomingRequests(c *gin.Context) {
	userID := c.GetInt("userID")
	requests, err := h.friendshipRepo.GetIncomingRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if requests == nil {
		requests = []models.Friendship{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// RemoveFriend handles DELETE /friends/:friendship_id.
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	friendshipID, err := strconv.Atoi(c.Param("friendship_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friendship id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.friendshipRepo.DeleteFriend(c.Request.Context(), friendshipID, userID); err != nil {
		h.emitAudit(c, "ERROR", "friend removal rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Friend removed")
	c.Status(http.StatusNoContent)
}

func (h *FriendshipHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
