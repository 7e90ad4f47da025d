package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

var (
	ErrSelfFriendRequest   = fmt.Errorf("%w: you can't add yourself", apperrors.ErrInvalidOperation)
	ErrFriendRequestExists = fmt.Errorf("%w: request already exists", apperrors.ErrConflict)
	ErrFriendshipNotFound  = fmt.Errorf("%w: friendship not found", apperrors.ErrNotFound)
	ErrNotRequestReceiver  = fmt.Errorf("%w: you cannot change this request", apperrors.ErrForbidden)
	ErrNotFriendshipParty  = fmt.Errorf("%w: you don't have permission to remove this friend", apperrors.ErrForbidden)
)

// FriendshipRepository resolves friend requests and accepted
// friendships.
type FriendshipRepository interface {
	SendRequest(ctx context.Context, senderID, receiverID int) (models.Friendship, error)
	UpdateRequestStatus(ctx context.Context, friendshipID, actorID int, status models.FriendshipStatus) (models.Friendship, error)
	GetIncomingRequests(ctx context.Context, userID int) ([]models.Friendship, error)
	GetFriendIDs(ctx context.Context, userID int) ([]int, error)
	AreFriends(ctx context.Context, userID, friendID int) (bool, error)
	DeleteFriend(ctx context.Context, friendshipID, actorID int) error
}

// FriendshipRepo is a sqlx implementation of FriendshipRepository.
type FriendshipRepo struct {
	db *sqlx.DB
}

// NewFriendshipRepo constructs a FriendshipRepo.
func NewFriendshipRepo(db *sqlx.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

// SendRequest creates a PENDING friend request. Only the same-direction
// pair is checked for duplicates; a reverse request is a distinct row.
func (r *FriendshipRepo) SendRequest(ctx context.Context, senderID, receiverID int) (models.Friendship, error) {
	if senderID == receiverID {
		return models.Friendship{}, ErrSelfFriendRequest
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friendships WHERE sender_id=$1 AND receiver_id=$2)`, senderID, receiverID); err != nil {
		return models.Friendship{}, err
	}
	if exists {
		return models.Friendship{}, ErrFriendRequestExists
	}

	var friendship models.Friendship
	err := r.db.QueryRowxContext(ctx, `INSERT INTO friendships (sender_id, receiver_id, status) VALUES ($1, $2, $3)
        RETURNING id, sender_id, receiver_id, status, created_at`, senderID, receiverID, models.FriendshipPending).
		StructScan(&friendship)
	if isUniqueViolation(err) {
		return models.Friendship{}, ErrFriendRequestExists
	}
	if err != nil {
		return models.Friendship{}, err
	}
	return friendship, nil
}

// UpdateRequestStatus lets the receiver accept or reject a request.
func (r *FriendshipRepo) UpdateRequestStatus(ctx context.Context, friendshipID, actorID int, status models.FriendshipStatus) (models.Friendship, error) {
	var friendship models.Friendship
	err := r.db.GetContext(ctx, &friendship, `SELECT id, sender_id, receiver_id, status, created_at FROM friendships WHERE id=$1`, friendshipID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	if err != nil {
		return models.Friendship{}, err
	}
	if friendship.ReceiverID != actorID {
		return models.Friendship{}, ErrNotRequestReceiver
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE friendships SET status=$1 WHERE id=$2`, status, friendshipID); err != nil {
		return models.Friendship{}, err
	}
	friendship.Status = status
	return friendship, nil
}

// GetIncomingRequests returns PENDING requests addressed to the user.
func (r *FriendshipRepo) GetIncomingRequests(ctx context.Context, userID int) ([]models.Friendship, error) {
	var requests []models.Friendship
	err := r.db.SelectContext(ctx, &requests, `SELECT id, sender_id, receiver_id, status, created_at FROM friendships
        WHERE status=$1 AND receiver_id=$2 ORDER BY created_at DESC`, models.FriendshipPending, userID)
	return requests, err
}

// GetFriendIDs returns every user with an ACCEPTED friendship
// involving userID, regardless of request direction.
func (r *FriendshipRepo) GetFriendIDs(ctx context.Context, userID int) ([]int, error) {
	return selectFriendIDs(ctx, r.db, userID)
}

// AreFriends reports an accepted friendship in either direction.
func (r *FriendshipRepo) AreFriends(ctx context.Context, userID, friendID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM friendships WHERE status=$1
        AND ((sender_id=$2 AND receiver_id=$3) OR (sender_id=$3 AND receiver_id=$2)))`, models.FriendshipAccepted, userID, friendID)
	return exists, err
}

// DeleteFriend removes a friendship; either party may do it.
func (r *FriendshipRepo) DeleteFriend(ctx context.Context, friendshipID, actorID int) error {
	var friendship models.Friendship
	err := r.db.GetContext(ctx, &friendship, `SELECT id, sender_id, receiver_id, status, created_at FROM friendships WHERE id=$1`, friendshipID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFriendshipNotFound
	}
	if err != nil {
		return err
	}
	if friendship.SenderID != actorID && friendship.ReceiverID != actorID {
		return ErrNotFriendshipParty
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM friendships WHERE id=$1`, friendshipID)
	return err
}

// selectFriendIDs is shared with group/event transactions so member
// filtering reads the friend set inside the same transaction.
func selectFriendIDs(ctx context.Context, q sqlx.ExtContext, userID int) ([]int, error) {
	var ids []int
	err := sqlx.SelectContext(ctx, q, &ids, `SELECT CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END
        FROM friendships WHERE status=$2 AND (sender_id=$1 OR receiver_id=$1)`, userID, models.FriendshipAccepted)
	return ids, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
