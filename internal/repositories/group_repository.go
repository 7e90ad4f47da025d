package repositories

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/jmoiron/sqlx"

	"social-chat-service/internal/authz"
	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

var (
	ErrNoFriendsProvided = fmt.Errorf("%w: no friends provided", apperrors.ErrInvalidOperation)
	ErrNoValidFriends    = fmt.Errorf("%w: you can only add your own friends", apperrors.ErrInvalidOperation)
	ErrAllAlreadyMembers = fmt.Errorf("%w: all selected users are already in the group", apperrors.ErrInvalidOperation)
	ErrTargetNotMember   = fmt.Errorf("%w: user is not a member of this group", apperrors.ErrInvalidOperation)
	ErrEmptyGroupTitle   = fmt.Errorf("%w: group title cannot be empty", apperrors.ErrInvalidOperation)
)

// SuccessorPicker selects one index among n succession candidates.
// Production uses math/rand; tests inject a deterministic picker.
type SuccessorPicker interface {
	Pick(n int) int
}

type randomPicker struct{}

// NewRandomPicker returns the default uniformly-random picker.
func NewRandomPicker() SuccessorPicker {
	return randomPicker{}
}

func (randomPicker) Pick(n int) int {
	return rand.Intn(n)
}

// GroupRepository orchestrates group-chat lifecycle and membership.
type GroupRepository interface {
	CreateGroupChat(ctx context.Context, creatorID int, title string, friendIDs []int) (models.Chat, error)
	AddMembers(ctx context.Context, chatID, actorID int, friendIDs []int) ([]int, error)
	GetMembers(ctx context.Context, chatID, viewerID int) ([]models.ChatParticipant, error)
	RemoveMember(ctx context.Context, chatID, actorID, targetID int) error
	Leave(ctx context.Context, chatID, userID int) (models.LeaveResult, error)
	Promote(ctx context.Context, chatID, actorID, targetID int) error
	Demote(ctx context.Context, chatID, actorID, targetID int) error
	Rename(ctx context.Context, chatID, actorID int, title string) (models.Chat, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db     *sqlx.DB
	picker SuccessorPicker
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB, picker SuccessorPicker) *GroupRepo {
	return &GroupRepo{db: db, picker: picker}
}

// CreateGroupChat creates the chat, inserts the creator as CREATOR and
// the valid friends as PARTICIPANT, all in one transaction. A group
// cannot be created without at least one successfully-added friend.
func (r *GroupRepo) CreateGroupChat(ctx context.Context, creatorID int, title string, friendIDs []int) (models.Chat, error) {
	if strings.TrimSpace(title) == "" {
		return models.Chat{}, ErrEmptyGroupTitle
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

	var chat models.Chat
	if err = tx.QueryRowxContext(ctx, `INSERT INTO chats (title, is_group) VALUES ($1, TRUE)
        RETURNING id, title, is_group, created_at`, strings.TrimSpace(title)).StructScan(&chat); err != nil {
		return models.Chat{}, err
	}

	if err = insertParticipant(ctx, tx, chat.ID, creatorID, models.RoleCreator); err != nil {
		return models.Chat{}, err
	}

	friends, err := selectFriendIDs(ctx, tx, creatorID)
	if err != nil {
		return models.Chat{}, err
	}
	validToAdd := intersectIDs(friendIDs, friends, creatorID)
	if len(validToAdd) == 0 {
		err = ErrNoValidFriends
		return models.Chat{}, err
	}

	for _, friendID := range validToAdd {
		if err = insertParticipant(ctx, tx, chat.ID, friendID, models.RoleParticipant); err != nil {
			return models.Chat{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// AddMembers adds the actor's friends that are not yet in the group
// and returns the newly-added ids.
func (r *GroupRepo) AddMembers(ctx context.Context, chatID, actorID int, friendIDs []int) ([]int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockChat(ctx, tx, chatID); err != nil {
		return nil, err
	}
	if _, err = getGroupChat(ctx, tx, chatID); err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		err = ErrNoFriendsProvided
		return nil, err
	}
	if _, err = getParticipant(ctx, tx, chatID, actorID, ErrNotGroupMember); err != nil {
		return nil, err
	}

	friends, err := selectFriendIDs(ctx, tx, actorID)
	if err != nil {
		return nil, err
	}
	valid := intersectIDs(friendIDs, friends, actorID)
	if len(valid) == 0 {
		err = ErrNoValidFriends
		return nil, err
	}

	existing, err := existingParticipantIDs(ctx, tx, chatID, valid)
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
		err = ErrAllAlreadyMembers
		return nil, err
	}

	for _, id := range toAdd {
		if err = insertParticipant(ctx, tx, chatID, id, models.RoleParticipant); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return toAdd, nil
}

// GetMembers lists participants; only members may view them.
func (r *GroupRepo) GetMembers(ctx context.Context, chatID, viewerID int) ([]models.ChatParticipant, error) {
	if _, err := getGroupChat(ctx, r.db, chatID); err != nil {
		return nil, err
	}
	if _, err := getParticipant(ctx, r.db, chatID, viewerID, ErrNotGroupMember); err != nil {
		return nil, err
	}
	return listParticipants(ctx, r.db, chatID)
}

// RemoveMember removes target from the group after the authorization
// rules pass.
func (r *GroupRepo) RemoveMember(ctx context.Context, chatID, actorID, targetID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockChat(ctx, tx, chatID); err != nil {
		return err
	}
	if _, err = getGroupChat(ctx, tx, chatID); err != nil {
		return err
	}

	target, err := getParticipant(ctx, tx, chatID, targetID, ErrTargetNotMember)
	if err != nil {
		return err
	}
	actor, err := getParticipant(ctx, tx, chatID, actorID, ErrNotGroupMember)
	if err != nil {
		return err
	}
	if err = authz.CheckRemoveMember(actor, target); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_participants WHERE id=$1`, target.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// Leave removes the caller from the group. A departing creator hands
// the CREATOR role to a random admin, or to a random remaining
// participant when no admin exists; the successor is promoted before
// the departing row is deleted. The sole remaining member dissolves
// the group.
func (r *GroupRepo) Leave(ctx context.Context, chatID, userID int) (models.LeaveResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.LeaveResult{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockChat(ctx, tx, chatID); err != nil {
		return models.LeaveResult{}, err
	}
	if _, err = getGroupChat(ctx, tx, chatID); err != nil {
		return models.LeaveResult{}, err
	}
	participant, err := getParticipant(ctx, tx, chatID, userID, ErrNotGroupMember)
	if err != nil {
		return models.LeaveResult{}, err
	}

	if participant.Role != models.RoleCreator {
		if _, err = tx.ExecContext(ctx, `DELETE FROM chat_participants WHERE id=$1`, participant.ID); err != nil {
			return models.LeaveResult{}, err
		}
		if err = tx.Commit(); err != nil {
			return models.LeaveResult{}, err
		}
		return models.LeaveResult{}, nil
	}

	var others []models.ChatParticipant
	if err = tx.SelectContext(ctx, &others, `SELECT id, chat_id, user_id, role FROM chat_participants
        WHERE chat_id=$1 AND user_id != $2 ORDER BY id`, chatID, userID); err != nil {
		return models.LeaveResult{}, err
	}

	if len(others) == 0 {
		// Last participant: the group dissolves; the chat row cascade
		// removes participants and messages.
		if _, err = tx.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID); err != nil {
			return models.LeaveResult{}, err
		}
		if err = tx.Commit(); err != nil {
			return models.LeaveResult{}, err
		}
		return models.LeaveResult{Dissolved: true}, nil
	}

	successor := pickSuccessor(others, r.picker)
	if _, err = tx.ExecContext(ctx, `UPDATE chat_participants SET role=$1 WHERE id=$2`, models.RoleCreator, successor.ID); err != nil {
		return models.LeaveResult{}, err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM chat_participants WHERE id=$1`, participant.ID); err != nil {
		return models.LeaveResult{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.LeaveResult{}, err
	}
	return models.LeaveResult{NewCreatorID: successor.UserID}, nil
}

// Promote raises target to ADMIN.
func (r *GroupRepo) Promote(ctx context.Context, chatID, actorID, targetID int) error {
	return r.changeRole(ctx, chatID, actorID, targetID, models.RoleAdmin, authz.CheckPromote)
}

// Demote lowers target to PARTICIPANT.
func (r *GroupRepo) Demote(ctx context.Context, chatID, actorID, targetID int) error {
	return r.changeRole(ctx, chatID, actorID, targetID, models.RoleParticipant, authz.CheckDemote)
}

func (r *GroupRepo) changeRole(ctx context.Context, chatID, actorID, targetID int, newRole models.ChatRole, check func(actor, target models.ChatParticipant) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = lockChat(ctx, tx, chatID); err != nil {
		return err
	}
	if _, err = getGroupChat(ctx, tx, chatID); err != nil {
		return err
	}
	actor, err := getParticipant(ctx, tx, chatID, actorID, ErrNotGroupMember)
	if err != nil {
		return err
	}
	target, err := getParticipant(ctx, tx, chatID, targetID, ErrNotGroupMember)
	if err != nil {
		return err
	}
	if err = check(actor, target); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE chat_participants SET role=$1 WHERE id=$2`, newRole, target.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// Rename updates the group title.
func (r *GroupRepo) Rename(ctx context.Context, chatID, actorID int, title string) (models.Chat, error) {
	chat, err := getGroupChat(ctx, r.db, chatID)
	if err != nil {
		return models.Chat{}, err
	}
	actor, err := getParticipant(ctx, r.db, chatID, actorID, ErrNotGroupMember)
	if err != nil {
		return models.Chat{}, err
	}
	if err := authz.CheckRename(actor, title); err != nil {
		return models.Chat{}, err
	}

	trimmed := strings.TrimSpace(title)
	if _, err := r.db.ExecContext(ctx, `UPDATE chats SET title=$1 WHERE id=$2`, trimmed, chatID); err != nil {
		return models.Chat{}, err
	}
	chat.Title = &trimmed
	return chat, nil
}

// pickSuccessor chooses the next creator: admins take priority, then
// any remaining participant. With exactly one admin the choice is
// deterministic regardless of the picker.
func pickSuccessor(remaining []models.ChatParticipant, picker SuccessorPicker) models.ChatParticipant {
	admins := make([]models.ChatParticipant, 0, len(remaining))
	for _, p := range remaining {
		if p.Role == models.RoleAdmin {
			admins = append(admins, p)
		}
	}
	pool := remaining
	if len(admins) > 0 {
		pool = admins
	}
	return pool[picker.Pick(len(pool))]
}

// intersectIDs keeps the requested ids that appear in the allowed set,
// deduplicated and with excluded dropped, preserving request order.
func intersectIDs(requested, allowed []int, excluded int) []int {
	allowedSet := make(map[int]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}

	seen := map[int]struct{}{}
	result := make([]int, 0, len(requested))
	for _, id := range requested {
		if id == excluded {
			continue
		}
		if _, ok := allowedSet[id]; !ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
