package models

import "time"

// FriendshipStatus is the lifecycle state of a friend request.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipRejected FriendshipStatus = "REJECTED"
)

// Friendship is a directed friend-request row. A request from A to B
// and one from B to A are distinct rows; only the receiver may change
// the status.
type Friendship struct {
	ID         int              `db:"id" json:"id"`
	SenderID   int              `db:"sender_id" json:"sender_id"`
	ReceiverID int              `db:"receiver_id" json:"receiver_id"`
	Status     FriendshipStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}
