package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

var (
	ErrEventNotFound          = fmt.Errorf("%w: event not found", apperrors.ErrNotFound)
	ErrNotEventParticipant    = fmt.Errorf("%w: you are not a participant of this event", apperrors.ErrForbidden)
	ErrEventTitleEmpty        = fmt.Errorf("%w: event title cannot be empty", apperrors.ErrInvalidOperation)
	ErrNotEventCreator        = fmt.Errorf("%w: only event creator can delete the event", apperrors.ErrForbidden)
	ErrEventUpdateForbidden   = fmt.Errorf("%w: only event creator or chat admins can update the event", apperrors.ErrForbidden)
	ErrNoParticipantsProvided = fmt.Errorf("%w: no participants provided", apperrors.ErrInvalidOperation)
	ErrAllAlreadyInEvent      = fmt.Errorf("%w: all selected users are already participants of this event", apperrors.ErrInvalidOperation)
)

// EventRepository binds events 1:1 to their companion group chats.
type EventRepository interface {
	CreateEvent(ctx context.Context, creatorID int, title string, description *string, startTime *time.Time, participantIDs []int) (models.Event, error)
	ListUserEvents(ctx context.Context, userID int) ([]models.Event, error)
	GetEvent(ctx context.Context, eventID, userID int) (models.Event, error)
	UpdateEvent(ctx context.Context, eventID, userID int, upd models.EventUpdate) (models.Event, error)
	DeleteEvent(ctx context.Context, eventID, userID int) error
	AddParticipants(ctx context.Context, eventID, actorID int, participantIDs []int) ([]int, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, title, description, creator_id, start_time, chat_id`

// CreateEvent creates the companion group chat, seeds its membership
// and inserts the event row, atomically. Non-friend or unknown
// participant ids are silently dropped.
func (r *EventRepo) CreateEvent(ctx context.Context, creatorID int, title string, description *string, startTime *time.Time, participantIDs []int) (models.Event, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return models.Event{}, ErrEventTitleEmpty
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Event{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var chat models.Chat
	if err = tx.QueryRowxContext(ctx, `INSERT INTO chats (title, is_group) VALUES ($1, TRUE)
        RETURNING id, title, is_group, created_at`, trimmedTitle).StructScan(&chat); err != nil {
		return models.Event{}, err
	}
	if err = insertParticipant(ctx, tx, chat.ID, creatorID, models.RoleCreator); err != nil {
		return models.Event{}, err
	}

	if len(participantIDs) > 0 {
		var friends []int
		friends, err = selectFriendIDs(ctx, tx, creatorID)
		if err != nil {
			return models.Event{}, err
		}
		for _, id := range intersectIDs(participantIDs, friends, creatorID) {
			if err = insertParticipant(ctx, tx, chat.ID, id, models.RoleParticipant); err != nil {
				return models.Event{}, err
			}
		}
	}

	var event models.Event
	if err = tx.QueryRowxContext(ctx, `INSERT INTO events (title, description, creator_id, start_time, chat_id)
        VALUES ($1, $2, $3, $4, $5) RETURNING `+eventColumns,
		trimmedTitle, trimDescription(description), creatorID, startTime, chat.ID).StructScan(&event); err != nil {
		return models.Event{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// ListUserEvents returns events whose companion chat the user
// participates in, newest first.
func (r *EventRepo) ListUserEvents(ctx context.Context, userID int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.SelectContext(ctx, &events, `SELECT e.id, e.title, e.description, e.creator_id, e.start_time, e.chat_id
        FROM events e JOIN chat_participants p ON p.chat_id = e.chat_id
        WHERE p.user_id=$1 ORDER BY e.id DESC`, userID)
	return events, err
}

// GetEvent returns an event to a participant of its companion chat.
func (r *EventRepo) GetEvent(ctx context.Context, eventID, userID int) (models.Event, error) {
	event, err := r.getEvent(ctx, r.db, eventID)
	if err != nil {
		return models.Event{}, err
	}
	if _, err := getParticipant(ctx, r.db, event.ChatID, userID, ErrNotEventParticipant); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// UpdateEvent applies partial changes. Allowed for the event creator
// or for chat CREATOR/ADMIN; a title change propagates to the
// companion chat.
func (r *EventRepo) UpdateEvent(ctx context.Context, eventID, userID int, upd models.EventUpdate) (models.Event, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Event{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	event, err := r.getEvent(ctx, tx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	participant, err := getParticipant(ctx, tx, event.ChatID, userID, ErrNotEventParticipant)
	if err != nil {
		return models.Event{}, err
	}
	if participant.Role != models.RoleCreator && participant.Role != models.RoleAdmin {
		if event.CreatorID == nil || *event.CreatorID != userID {
			err = ErrEventUpdateForbidden
			return models.Event{}, err
		}
	}

	if upd.Title != nil {
		trimmed := strings.TrimSpace(*upd.Title)
		if trimmed == "" {
			err = ErrEventTitleEmpty
			return models.Event{}, err
		}
		event.Title = trimmed
		if _, err = tx.ExecContext(ctx, `UPDATE chats SET title=$1 WHERE id=$2`, trimmed, event.ChatID); err != nil {
			return models.Event{}, err
		}
	}
	if upd.Description != nil {
		event.Description = trimDescription(upd.Description)
	}
	if upd.StartTime != nil {
		event.StartTime = upd.StartTime
	}

	if _, err = tx.ExecContext(ctx, `UPDATE events SET title=$1, description=$2, start_time=$3 WHERE id=$4`,
		event.Title, event.Description, event.StartTime, event.ID); err != nil {
		return models.Event{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// DeleteEvent deletes the event and its companion chat; participants
// and messages go with the chat. Creator only.
func (r *EventRepo) DeleteEvent(ctx context.Context, eventID, userID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	event, err := r.getEvent(ctx, tx, eventID)
	if err != nil {
		return err
	}
	if event.CreatorID == nil || *event.CreatorID != userID {
		err = ErrNotEventCreator
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, event.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, event.ChatID); err != nil {
		return err
	}
	return tx.Commit()
}

// AddParticipants lets any current participant invite their friends;
// fails when nothing remains to add after filtering.
func (r *EventRepo) AddParticipants(ctx context.Context, eventID, actorID int, participantIDs []int) ([]int, error) {
	if len(participantIDs) == 0 {
		return nil, ErrNoParticipantsProvided
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	event, err := r.getEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if err = lockChat(ctx, tx, event.ChatID); err != nil {
		return nil, err
	}
	if _, err = getParticipant(ctx, tx, event.ChatID, actorID, ErrNotEventParticipant); err != nil {
		return nil, err
	}

	friends, err := selectFriendIDs(ctx, tx, actorID)
	if err != nil {
		return nil, err
	}
	valid := intersectIDs(participantIDs, friends, actorID)

	existing, err := existingParticipantIDs(ctx, tx, event.ChatID, valid)
	if err != nil {
		return nil, err
	}
	toAdd := make([]int, 0, len(valid))
	for _, id := range valid {
		if _, ok := existing[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	if len(toAdd) == 0 {
		err = ErrAllAlreadyInEvent
		return nil, err
	}

	for _, id := range toAdd {
		if err = insertParticipant(ctx, tx, event.ChatID, id, models.RoleParticipant); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return toAdd, nil
}

func (r *EventRepo) getEvent(ctx context.Context, q sqlx.ExtContext, eventID int) (models.Event, error) {
	var event models.Event
	err := sqlx.GetContext(ctx, q, &event, `SELECT `+eventColumns+` FROM events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}

func trimDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
