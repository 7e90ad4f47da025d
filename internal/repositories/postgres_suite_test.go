package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"social-chat-service/internal/db"
	"social-chat-service/internal/models"
)

// PostgresSuite runs repository tests against a real database. Set
// TEST_DB_DSN to enable them; they are skipped otherwise.
type PostgresSuite struct {
	suite.Suite
	db *sqlx.DB
}

func (s *PostgresSuite) SetupSuite() {
	viper.AutomaticEnv()
	dsn := viper.GetString("TEST_DB_DSN")
	if dsn == "" {
		s.T().Skip("TEST_DB_DSN is not set")
	}

	var err error
	s.db, err = db.Connect(dsn, logrus.New())
	require.NoError(s.T(), err, "failed to connect to database")
}

func (s *PostgresSuite) TearDownTest() {
	_, err := s.db.Exec("TRUNCATE friendships, events, messages, chat_participants, chats RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "can't teardown test")
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// befriend seeds an accepted friendship between two users.
func (s *PostgresSuite) befriend(ctx context.Context, a, b int) {
	repo := NewFriendshipRepo(s.db)
	request, err := repo.SendRequest(ctx, a, b)
	require.NoError(s.T(), err, "failed to send friend request")
	_, err = repo.UpdateRequestStatus(ctx, request.ID, b, models.FriendshipAccepted)
	require.NoError(s.T(), err, "failed to accept friend request")
}

func (s *PostgresSuite) count(query string, args ...interface{}) int {
	count := -1
	err := s.db.Get(&count, query, args...)
	require.NoError(s.T(), err, "count query failed")
	return count
}
