package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"social-chat-service/internal/models"
)

type GroupRepoSuite struct {
	PostgresSuite
}

func TestGroupRepoSuite(t *testing.T) {
	suite.Run(t, &GroupRepoSuite{})
}

func (s *GroupRepoSuite) Test_CreateGroupChat_RoundTrip() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.befriend(ctx, 1, 2)
	s.befriend(ctx, 1, 3)

	repo := NewGroupRepo(s.db, fixedPicker(0))
	chat, err := repo.CreateGroupChat(ctx, 1, "hiking", []int{2, 3, 9})
	require.NoError(s.T(), err, "should create the group")
	require.NotNil(s.T(), chat.Title)
	assert.Equal(s.T(), "hiking", *chat.Title)
	assert.True(s.T(), chat.IsGroup)

	members, err := repo.GetMembers(ctx, chat.ID, 1)
	require.NoError(s.T(), err, "creator should see the members")
	require.Len(s.T(), members, 3, "non-friend 9 must be dropped")

	roles := map[int]models.ChatRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	assert.Equal(s.T(), models.RoleCreator, roles[1])
	assert.Equal(s.T(), models.RoleParticipant, roles[2])
	assert.Equal(s.T(), models.RoleParticipant, roles[3])
}

func (s *GroupRepoSuite) Test_Leave_LastMemberDissolvesGroup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.befriend(ctx, 1, 2)

	repo := NewGroupRepo(s.db, fixedPicker(0))
	chat, err := repo.CreateGroupChat(ctx, 1, "trip", []int{2})
	require.NoError(s.T(), err, "should create the group")

	_, err = NewMessageRepo(s.db).SendMessage(ctx, chat.ID, 1, "packing list")
	require.NoError(s.T(), err, "should send a message")

	result, err := repo.Leave(ctx, chat.ID, 2)
	require.NoError(s.T(), err, "participant should leave freely")
	assert.False(s.T(), result.Dissolved)

	result, err = repo.Leave(ctx, chat.ID, 1)
	require.NoError(s.T(), err, "sole remaining creator should dissolve the group")
	assert.True(s.T(), result.Dissolved)

	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM chats"), "chat row must be gone")
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM chat_participants"), "participants must cascade")
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM messages"), "messages must cascade")
}

func (s *GroupRepoSuite) Test_Leave_CreatorHandsOverToAdmin() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.befriend(ctx, 1, 2)
	s.befriend(ctx, 1, 3)

	repo := NewGroupRepo(s.db, fixedPicker(0))
	chat, err := repo.CreateGroupChat(ctx, 1, "club", []int{2, 3})
	require.NoError(s.T(), err, "should create the group")
	require.NoError(s.T(), repo.Promote(ctx, chat.ID, 1, 3), "should promote 3 to admin")

	result, err := repo.Leave(ctx, chat.ID, 1)
	require.NoError(s.T(), err, "creator should leave with a handover")
	assert.Equal(s.T(), 3, result.NewCreatorID, "the single admin must succeed the creator")

	members, err := repo.GetMembers(ctx, chat.ID, 3)
	require.NoError(s.T(), err)
	require.Len(s.T(), members, 2, "departed creator must be removed")

	roles := map[int]models.ChatRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	assert.Equal(s.T(), models.RoleCreator, roles[3])
	assert.Equal(s.T(), models.RoleParticipant, roles[2])
	assert.Equal(s.T(), 1,
		s.count("SELECT count(*) FROM chat_participants WHERE chat_id=$1 AND role=$2", chat.ID, models.RoleCreator),
		"exactly one creator may remain")
}
