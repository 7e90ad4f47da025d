package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

var (
	ErrChatNotFound = fmt.Errorf("%w: chat not found", apperrors.ErrNotFound)
	ErrNotGroupChat = fmt.Errorf("%w: this chat is not a group chat", apperrors.ErrInvalidOperation)

	// Membership absence is an authorization failure, not a missing
	// resource, so chat existence is not leaked to non-members.
	ErrNotGroupMember = fmt.Errorf("%w: you are not a member of this group", apperrors.ErrForbidden)
	ErrNotChatMember  = fmt.Errorf("%w: you are not a member of this chat", apperrors.ErrForbidden)
)

// getChat fetches any chat by id.
func getChat(ctx context.Context, q sqlx.ExtContext, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := sqlx.GetContext(ctx, q, &chat, `SELECT id, title, is_group, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// getGroupChat fetches a chat and requires it to be a group.
func getGroupChat(ctx context.Context, q sqlx.ExtContext, chatID int) (models.Chat, error) {
	chat, err := getChat(ctx, q, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	if !chat.IsGroup {
		return models.Chat{}, ErrNotGroupChat
	}
	return chat, nil
}

// getParticipant loads a membership row, failing with notMemberErr
// when the user does not participate in the chat.
func getParticipant(ctx context.Context, q sqlx.ExtContext, chatID, userID int, notMemberErr error) (models.ChatParticipant, error) {
	var p models.ChatParticipant
	err := sqlx.GetContext(ctx, q, &p, `SELECT id, chat_id, user_id, role FROM chat_participants WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChatParticipant{}, notMemberErr
	}
	return p, err
}

// listParticipants returns all membership rows of a chat.
func listParticipants(ctx context.Context, q sqlx.ExtContext, chatID int) ([]models.ChatParticipant, error) {
	var participants []models.ChatParticipant
	err := sqlx.SelectContext(ctx, q, &participants, `SELECT id, chat_id, user_id, role FROM chat_participants WHERE chat_id=$1 ORDER BY id`, chatID)
	return participants, err
}

// insertParticipant adds a membership row. The (chat_id, user_id)
// unique key backs the one-row-per-member invariant.
func insertParticipant(ctx context.Context, q sqlx.ExtContext, chatID, userID int, role models.ChatRole) error {
	_, err := q.ExecContext(ctx, `INSERT INTO chat_participants (chat_id, user_id, role) VALUES ($1, $2, $3)`, chatID, userID, role)
	return err
}

// existingParticipantIDs returns which of the candidate user ids are
// already members of the chat.
func existingParticipantIDs(ctx context.Context, tx *sqlx.Tx, chatID int, candidates []int) (map[int]struct{}, error) {
	existing := map[int]struct{}{}
	if len(candidates) == 0 {
		return existing, nil
	}

	query, args, err := sqlx.In(`SELECT user_id FROM chat_participants WHERE chat_id = ? AND user_id IN (?)`, chatID, candidates)
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// lockChat serializes membership-mutating transactions on one chat.
// The advisory lock is released automatically at commit or rollback.
func lockChat(ctx context.Context, tx *sqlx.Tx, chatID int) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, chatID)
	return err
}

// lockUserPair serializes private-chat creation for one unordered user
// pair via the two-key advisory lock form.
func lockUserPair(ctx context.Context, tx *sqlx.Tx, a, b int) error {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lo, hi)
	return err
}
