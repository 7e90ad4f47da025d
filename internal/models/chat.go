package models

import "time"

// ChatRole is the role a participant holds inside a group chat.
// Private-chat participants default to PARTICIPANT and the role is
// never consulted there.
type ChatRole string

const (
	RoleCreator     ChatRole = "CREATOR"
	RoleAdmin       ChatRole = "ADMIN"
	RoleParticipant ChatRole = "PARTICIPANT"
)

// Chat is a conversation. A private chat has exactly two participants;
// a group chat has role-gated membership and at least one participant
// while it exists.
type Chat struct {
	ID        int       `db:"id" json:"id"`
	Title     *string   `db:"title" json:"title"`
	IsGroup   bool      `db:"is_group" json:"is_group"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChatParticipant is the membership record of one user in one chat.
type ChatParticipant struct {
	ID     int      `db:"id" json:"id"`
	ChatID int      `db:"chat_id" json:"chat_id"`
	UserID int      `db:"user_id" json:"user_id"`
	Role   ChatRole `db:"role" json:"role"`
}

// LeaveResult describes what happened when a user left a group chat.
type LeaveResult struct {
	Dissolved    bool `json:"dissolved"`
	NewCreatorID int  `json:"new_creator_id,omitempty"`
}

// ChatEvent is broadcasted through websockets to chat rooms.
type ChatEvent struct {
	Type      string   `json:"type"`
	Message   *Message `json:"message,omitempty"`
	MessageID int      `json:"message_id,omitempty"`
	UserID    int      `json:"user_id,omitempty"`
	Role      ChatRole `json:"role,omitempty"`
	Title     string   `json:"title,omitempty"`
}
