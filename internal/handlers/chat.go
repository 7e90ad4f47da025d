package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
	apperrors "social-chat-service/pkg/errors"
)

var errNotFriends = fmt.Errorf("%w: users are not friends", apperrors.ErrForbidden)

// ChatHandler manages chat listing and private chats.
type ChatHandler struct {
	chatRepo       repositories.ChatRepository
	friendshipRepo repositories.FriendshipRepository
	audit          *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(chatRepo repositories.ChatRepository, friendshipRepo repositories.FriendshipRepository, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{chatRepo: chatRepo, friendshipRepo: friendshipRepo, audit: audit}
}

// ListChats returns every chat the caller participates in.
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.GetInt("userID")
	chats, err := h.chatRepo.ListChats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// StartPrivateChat handles POST /chats/private. Requires an accepted
// friendship; the same unordered pair always resolves to the same chat.
func (h *ChatHandler) StartPrivateChat(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		FriendID int `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.emitAudit(c, "ERROR", "invalid request payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if userID != req.FriendID {
		friends, err := h.friendshipRepo.AreFriends(c.Request.Context(), userID, req.FriendID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !friends {
			h.emitAudit(c, "ERROR", "private chat rejected: not friends")
			respondError(c, errNotFriends)
			return
		}
	}

	chat, err := h.chatRepo.GetOrCreatePrivateChat(c.Request.Context(), userID, req.FriendID)
	if err != nil {
		h.emitAudit(c, "ERROR", "private chat rejected")
		respondError(c, err)
		return
	}

	h.emitAudit(c, "INFO", "Private chat started")
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), userIDFromContext(c))
}
