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

var ErrSelfPrivateChat = fmt.Errorf("%w: cannot create private chat with yourself", apperrors.ErrInvalidOperation)

// ChatRepository covers private chats and chat listing shared by all
// chat kinds.
type ChatRepository interface {
	GetOrCreatePrivateChat(ctx context.Context, userID, friendID int) (models.Chat, error)
	ListChats(ctx context.Context, userID int) ([]models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsParticipant(ctx context.Context, chatID, userID int) (bool, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const selectPrivateChat = `SELECT c.id, c.title, c.is_group, c.created_at FROM chats c
        JOIN chat_participants p ON p.chat_id = c.id
        WHERE c.is_group = FALSE AND p.user_id IN ($1, $2)
        GROUP BY c.id HAVING COUNT(DISTINCT p.user_id) = 2`

// GetOrCreatePrivateChat returns the existing private chat between the
// two users or creates it with both participants atomically. Creation
// takes an advisory lock on the unordered pair and re-checks under it,
// so concurrent calls for the same pair resolve to one chat.
func (r *ChatRepo) GetOrCreatePrivateChat(ctx context.Context, userID, friendID int) (models.Chat, error) {
	if userID == friendID {
		return models.Chat{}, ErrSelfPrivateChat
	}

	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, selectPrivateChat, userID, friendID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockUserPair(ctx, tx, userID, friendID); err != nil {
		return models.Chat{}, err
	}
	// A concurrent call may have created the chat while we waited for
	// the lock.
	err = tx.GetContext(ctx, &chat, selectPrivateChat, userID, friendID)
	if err == nil {
		if err = tx.Commit(); err != nil {
			return models.Chat{}, err
		}
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	if err = tx.QueryRowxContext(ctx, `INSERT INTO chats (is_group) VALUES (FALSE)
        RETURNING id, title, is_group, created_at`).StructScan(&chat); err != nil {
		return models.Chat{}, err
	}
	// Exactly two participants, enforced only here.
	if err = insertParticipant(ctx, tx, chat.ID, userID, models.RoleParticipant); err != nil {
		return models.Chat{}, err
	}
	if err = insertParticipant(ctx, tx, chat.ID, friendID, models.RoleParticipant); err != nil {
		return models.Chat{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// ListChats returns every chat the user participates in, newest first.
func (r *ChatRepo) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.SelectContext(ctx, &chats, `SELECT c.id, c.title, c.is_group, c.created_at FROM chats c
        JOIN chat_participants p ON p.chat_id = c.id WHERE p.user_id=$1 ORDER BY c.id DESC`, userID)
	return chats, err
}

// GetChat fetches any chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	return getChat(ctx, r.db, chatID)
}

// IsParticipant checks whether the user belongs to the chat.
func (r *ChatRepo) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}
