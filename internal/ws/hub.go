package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"social-chat-service/internal/models"
	"social-chat-service/internal/observability"
)

// Hub maintains active websocket connections per chat room. Private
// and group chats share the same keyspace.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a chat room.
func (h *Hub) AddClient(chatID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[chatID][conn] = true
	if _, ok := h.connInfo[chatID]; !ok {
		h.connInfo[chatID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[chatID][conn] = info
}

// RemoveClient removes a websocket connection from a chat room.
func (h *Hub) RemoveClient(chatID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
	if infos, ok := h.connInfo[chatID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, chatID)
		}
	}
}

// BroadcastMessage sends a new message to all clients in a chat.
func (h *Hub) BroadcastMessage(chatID int, msg models.Message) {
	h.broadcast(chatID, models.ChatEvent{Type: "message", Message: &msg})
}

// BroadcastMessageEdited notifies clients of an edited message.
func (h *Hub) BroadcastMessageEdited(chatID int, msg models.Message) {
	h.broadcast(chatID, models.ChatEvent{Type: "message_edited", Message: &msg})
}

// BroadcastMessageDeleted notifies clients of a deleted message.
func (h *Hub) BroadcastMessageDeleted(chatID, messageID int) {
	h.broadcast(chatID, models.ChatEvent{Type: "message_deleted", MessageID: messageID})
}

// BroadcastMemberAdded notifies clients that a user joined the chat.
func (h *Hub) BroadcastMemberAdded(chatID, userID int) {
	h.broadcast(chatID, models.ChatEvent{Type: "member_added", UserID: userID, Role: models.RoleParticipant})
}

// BroadcastMemberRemoved notifies clients that a user left or was
// removed from the chat.
func (h *Hub) BroadcastMemberRemoved(chatID, userID int) {
	h.broadcast(chatID, models.ChatEvent{Type: "member_removed", UserID: userID})
}

// BroadcastRoleChanged notifies clients of a role change.
func (h *Hub) BroadcastRoleChanged(chatID, userID int, role models.ChatRole) {
	h.broadcast(chatID, models.ChatEvent{Type: "role_changed", UserID: userID, Role: role})
}

// BroadcastTitleChanged notifies clients of a chat title change.
func (h *Hub) BroadcastTitleChanged(chatID int, title string) {
	h.broadcast(chatID, models.ChatEvent{Type: "title_changed", Title: title})
}

func (h *Hub) broadcast(chatID int, event models.ChatEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[chatID]))
	for conn := range h.rooms[chatID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.WithError(err).Warn("websocket write error")
			conn.Close()
			// Publish while the conn info is still registered.
			h.publishWSError(chatID, conn, err)
			h.RemoveClient(chatID, conn)
		}
	}
}

func (h *Hub) publishWSError(chatID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(chatID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.chats", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(chatID, "ws_error", info, time.Since(info.ConnectedAt).Milliseconds(), err.Error()),
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(chatID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[chatID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
