// Package authz holds the pure role-authorization rules for group
// chats. Nothing here touches storage: callers load the actor and
// target participants first and the checks decide over roles alone.
package authz

import (
	"fmt"
	"strings"

	"social-chat-service/internal/models"
	apperrors "social-chat-service/pkg/errors"
)

// Operation is a role-gated group mutation.
type Operation string

const (
	OpRemoveMember Operation = "remove_member"
	OpPromote      Operation = "promote"
	OpDemote       Operation = "demote"
	OpRename       Operation = "rename"
)

// allowedRoles is the single rule table for which roles may invoke
// each operation. Adding a member is open to any current participant
// and therefore needs no entry.
var allowedRoles = map[Operation]map[models.ChatRole]bool{
	OpRemoveMember: {models.RoleCreator: true, models.RoleAdmin: true},
	OpPromote:      {models.RoleCreator: true, models.RoleAdmin: true},
	OpDemote:       {models.RoleCreator: true},
	OpRename:       {models.RoleCreator: true, models.RoleAdmin: true},
}

// Role failures.
var (
	ErrRemoveRole  = fmt.Errorf("%w: only group creator or admins are allowed to remove members", apperrors.ErrForbidden)
	ErrPromoteRole = fmt.Errorf("%w: only creator or admins can promote members", apperrors.ErrForbidden)
	ErrDemoteRole  = fmt.Errorf("%w: only the group creator can demote admins", apperrors.ErrForbidden)
	ErrRenameRole  = fmt.Errorf("%w: only group creator or admins can change the group title", apperrors.ErrForbidden)
)

// Target/state failures.
var (
	ErrRemoveSelf         = fmt.Errorf("%w: you cannot remove yourself from the group", apperrors.ErrInvalidOperation)
	ErrRemoveProtected    = fmt.Errorf("%w: you cannot remove creator or admin from the group", apperrors.ErrInvalidOperation)
	ErrPromoteCreator     = fmt.Errorf("%w: cannot change role of the creator", apperrors.ErrInvalidOperation)
	ErrAlreadyAdmin       = fmt.Errorf("%w: user is already an admin", apperrors.ErrInvalidOperation)
	ErrDemoteCreator      = fmt.Errorf("%w: you cannot demote yourself as creator", apperrors.ErrInvalidOperation)
	ErrAlreadyParticipant = fmt.Errorf("%w: user is already a participant", apperrors.ErrInvalidOperation)
	ErrEmptyTitle         = fmt.Errorf("%w: group title cannot be empty", apperrors.ErrInvalidOperation)
)

var roleErrors = map[Operation]error{
	OpRemoveMember: ErrRemoveRole,
	OpPromote:      ErrPromoteRole,
	OpDemote:       ErrDemoteRole,
	OpRename:       ErrRenameRole,
}

// RequireRole consults the rule table for the operation.
func RequireRole(op Operation, actor models.ChatRole) error {
	if allowedRoles[op][actor] {
		return nil
	}
	return roleErrors[op]
}

// CheckRemoveMember validates removing target from a group by actor.
// Actors cannot remove themselves through this path, and an admin
// cannot remove the creator or another admin.
func CheckRemoveMember(actor, target models.ChatParticipant) error {
	if err := RequireRole(OpRemoveMember, actor.Role); err != nil {
		return err
	}
	if actor.UserID == target.UserID {
		return ErrRemoveSelf
	}
	if (target.Role == models.RoleCreator || target.Role == models.RoleAdmin) && actor.Role == models.RoleAdmin {
		return ErrRemoveProtected
	}
	return nil
}

// CheckPromote validates promoting target to ADMIN.
func CheckPromote(actor, target models.ChatParticipant) error {
	if err := RequireRole(OpPromote, actor.Role); err != nil {
		return err
	}
	if target.Role == models.RoleCreator {
		return ErrPromoteCreator
	}
	if target.Role == models.RoleAdmin {
		return ErrAlreadyAdmin
	}
	return nil
}

// CheckDemote validates demoting target to PARTICIPANT.
func CheckDemote(actor, target models.ChatParticipant) error {
	if err := RequireRole(OpDemote, actor.Role); err != nil {
		return err
	}
	if target.Role == models.RoleCreator {
		return ErrDemoteCreator
	}
	if target.Role == models.RoleParticipant {
		return ErrAlreadyParticipant
	}
	return nil
}

// CheckRename validates a group title change by actor.
func CheckRename(actor models.ChatParticipant, title string) error {
	if err := RequireRole(OpRename, actor.Role); err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}
