package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ChatRepoSuite struct {
	PostgresSuite
}

func TestChatRepoSuite(t *testing.T) {
	suite.Run(t, &ChatRepoSuite{})
}

func (s *ChatRepoSuite) Test_GetOrCreatePrivateChat_SamePairResolvesToOneChat() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := NewChatRepo(s.db)
	first, err := repo.GetOrCreatePrivateChat(ctx, 1, 2)
	require.NoError(s.T(), err, "should create the private chat")
	assert.False(s.T(), first.IsGroup, "private chat must not be a group")

	again, err := repo.GetOrCreatePrivateChat(ctx, 1, 2)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, again.ID, "same pair must return the same chat")

	reversed, err := repo.GetOrCreatePrivateChat(ctx, 2, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, reversed.ID, "pair order must not matter")

	assert.Equal(s.T(), 1, s.count("SELECT count(*) FROM chats"), "should be exactly one chat")
	assert.Equal(s.T(), 2, s.count("SELECT count(*) FROM chat_participants WHERE chat_id=$1", first.ID), "should be exactly two participants")
}

func (s *ChatRepoSuite) Test_GetOrCreatePrivateChat_ConcurrentCallsShareOneChat() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := NewChatRepo(s.db)
	ids := make([]int, 4)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat, err := repo.GetOrCreatePrivateChat(ctx, 1, 2)
			assert.NoError(s.T(), err, "concurrent call should succeed")
			ids[i] = chat.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(s.T(), ids[0], id, "all callers must resolve to the same chat")
	}
	assert.Equal(s.T(), 1, s.count("SELECT count(*) FROM chats"), "only one chat row may exist")
}

func (s *ChatRepoSuite) Test_GetOrCreatePrivateChat_RejectsSelf() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := NewChatRepo(s.db)
	_, err := repo.GetOrCreatePrivateChat(ctx, 1, 1)
	assert.ErrorIs(s.T(), err, ErrSelfPrivateChat)
	assert.Equal(s.T(), 0, s.count("SELECT count(*) FROM chats"), "no chat may be created")
}
