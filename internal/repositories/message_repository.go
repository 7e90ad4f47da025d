package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

var (
	ErrMessageNotFound  = fmt.Errorf("%w: message not found", apperrors.ErrNotFound)
	ErrEmptyMessage     = fmt.Errorf("%w: message content cannot be empty", apperrors.ErrInvalidOperation)
	ErrNotMessageSender = fmt.Errorf("%w: you can only modify your own messages", apperrors.ErrForbidden)
)

// MessageRepository stores chat messages.
type MessageRepository interface {
	SendMessage(ctx context.Context, chatID, senderID int, content string) (models.Message, error)
	ListMessages(ctx context.Context, chatID, userID, skip, limit int) ([]models.Message, int, error)
	GetMessage(ctx context.Context, messageID, userID int) (models.Message, error)
	UpdateMessage(ctx context.Context, messageID, userID int, content string) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID, userID int) error
}

// MessageRepo is a sqlx implementation of MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_id, sender_id, content, created_at`

// SendMessage stores a message sent by a chat member. The timestamp is
// assigned by the database in UTC.
func (r *MessageRepo) SendMessage(ctx context.Context, chatID, senderID int, content string) (models.Message, error) {
	if _, err := getChat(ctx, r.db, chatID); err != nil {
		return models.Message{}, err
	}
	if _, err := getParticipant(ctx, r.db, chatID, senderID, ErrNotChatMember); err != nil {
		return models.Message{}, err
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Message{}, ErrEmptyMessage
	}

	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3)
        RETURNING `+messageColumns, chatID, senderID, trimmed).StructScan(&msg)
	return msg, err
}

// ListMessages returns one page of the newest messages, oldest first
// within the page, plus the total message count.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID, userID, skip, limit int) ([]models.Message, int, error) {
	if _, err := getChat(ctx, r.db, chatID); err != nil {
		return nil, 0, err
	}
	if _, err := getParticipant(ctx, r.db, chatID, userID, ErrNotChatMember); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE chat_id=$1`, chatID); err != nil {
		return nil, 0, err
	}

	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1
        ORDER BY created_at DESC OFFSET $2 LIMIT $3`, chatID, skip, limit); err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, total, nil
}

// GetMessage returns a single message to a chat member.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID, userID int) (models.Message, error) {
	msg, err := r.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := getParticipant(ctx, r.db, msg.ChatID, userID, ErrNotChatMember); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// UpdateMessage edits the content; sender only.
func (r *MessageRepo) UpdateMessage(ctx context.Context, messageID, userID int, content string) (models.Message, error) {
	msg, err := r.getMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	if msg.SenderID != userID {
		return models.Message{}, ErrNotMessageSender
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return models.Message{}, ErrEmptyMessage
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE messages SET content=$1 WHERE id=$2`, trimmed, messageID); err != nil {
		return models.Message{}, err
	}
	msg.Content = trimmed
	return msg, nil
}

// DeleteMessage removes the message; sender only.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID, userID int) error {
	msg, err := r.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return ErrNotMessageSender
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	return err
}

func (r *MessageRepo) getMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
