package models

import "time"

// Event is a scheduled event bound 1:1 to a dedicated group chat that
// hosts its participants. Deleting the event deletes the chat.
type Event struct {
	ID          int        `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	CreatorID   *int       `db:"creator_id" json:"creator_id"`
	StartTime   *time.Time `db:"start_time" json:"start_time"`
	ChatID      int        `db:"chat_id" json:"chat_id"`
}

// EventUpdate carries optional field changes; nil means "leave as is".
type EventUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
}
