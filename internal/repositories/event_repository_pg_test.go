package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EventRepoSuite struct {
	PostgresSuite
}

func TestEventRepoSuite(t *testing.T) {
	suite.Run(t, &EventRepoSuite{})
}

func (s *EventRepoSuite) Test_DeleteEvent_RemovesCompanionChat() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.befriend(ctx, 1, 2)

	repo := NewEventRepo(s.db)
	event, err := repo.CreateEvent(ctx, 1, "picnic", nil, nil, []int{2})
	require.NoError(s.T(), err, "should create the event")
	assert.Equal(s.T(), 2, s.count("SELECT count(*) FROM chat_participants WHERE chat_id=$1", event.ChatID))

	_, err = NewMessageRepo(s.db).SendMessage(ctx, event.ChatID, 2, "bring snacks")
	require.NoError(s.T(), err, "participant should message the companion chat")

	require.NoError(s.T(), repo.DeleteEvent(ctx, event.ID, 1), "creator should delete the event")

	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM events"), "event row must be gone")
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM chats"), "companion chat must be gone")
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM chat_participants"), "participants must cascade")
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM messages"), "messages must cascade")
}

func (s *EventRepoSuite) Test_DeleteEvent_CreatorOnly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.befriend(ctx, 1, 2)

	repo := NewEventRepo(s.db)
	event, err := repo.CreateEvent(ctx, 1, "picnic", nil, nil, []int{2})
	require.NoError(s.T(), err, "should create the event")

	err = repo.DeleteEvent(ctx, event.ID, 2)
	assert.ErrorIs(s.T(), err, ErrNotEventCreator)
	assert.Equal(s.T(), 1, s.count("SELECT count(*) FROM events"), "event must survive")
	assert.Equal(s.T(), 1, s.count("SELECT count(*) FROM chats"), "companion chat must survive")
}
