package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/telemetry"
)

type FriendshipRepositoryMock struct {
	mock.Mock
}

func (m *FriendshipRepositoryMock) SendRequest(ctx context.Context, senderID, receiverID int) (models.Friendship, error) {
	args := m.Called(ctx, senderID, receiverID)
	var friendship models.Friendship
	if val := args.Get(0); val != nil {
		friendship = val.(models.Friendship)
	}
	return friendship, args.Error(1)
}

func (m *FriendshipRepositoryMock) UpdateRequestStatus(ctx context.Context, friendshipID, actorID int, status models.FriendshipStatus) (models.Friendship, error) {
	args := m.Called(ctx, friendshipID, actorID, status)
	var friendship models.Friendship
	if val := args.Get(0); val != nil {
		friendship = val.(models.Friendship)
	}
	return friendship, args.Error(1)
}

func (m *FriendshipRepositoryMock) GetIncomingRequests(ctx context.Context, userID int) ([]models.Friendship, error) {
	args := m.Called(ctx, userID)
	var requests []models.Friendship
	if val := args.Get(0); val != nil {
		requests = val.([]models.Friendship)
	}
	return requests, args.Error(1)
}

func (m *FriendshipRepositoryMock) GetFriendIDs(ctx context.Context, userID int) ([]int, error) {
	args := m.Called(ctx, userID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *FriendshipRepositoryMock) AreFriends(ctx context.Context, userID, friendID int) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *FriendshipRepositoryMock) DeleteFriend(ctx context.Context, friendshipID, actorID int) error {
	args := m.Called(ctx, friendshipID, actorID)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) GetOrCreatePrivateChat(ctx context.Context, userID, friendID int) (models.Chat, error) {
	args := m.Called(ctx, userID, friendID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID int) ([]models.Chat, error) {
	args := m.Called(ctx, userID)
	var chats []models.Chat
	if val := args.Get(0); val != nil {
		chats = val.([]models.Chat)
	}
	return chats, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) IsParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroupChat(ctx context.Context, creatorID int, title string, friendIDs []int) (models.Chat, error) {
	args := m.Called(ctx, creatorID, title, friendIDs)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *GroupRepositoryMock) AddMembers(ctx context.Context, chatID, actorID int, friendIDs []int) ([]int, error) {
	args := m.Called(ctx, chatID, actorID, friendIDs)
	var added []int
	if val := args.Get(0); val != nil {
		added = val.([]int)
	}
	return added, args.Error(1)
}

func (m *GroupRepositoryMock) GetMembers(ctx context.Context, chatID, viewerID int) ([]models.ChatParticipant, error) {
	args := m.Called(ctx, chatID, viewerID)
	var members []models.ChatParticipant
	if val := args.Get(0); val != nil {
		members = val.([]models.ChatParticipant)
	}
	return members, args.Error(1)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, chatID, actorID, targetID int) error {
	args := m.Called(ctx, chatID, actorID, targetID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Leave(ctx context.Context, chatID, userID int) (models.LeaveResult, error) {
	args := m.Called(ctx, chatID, userID)
	var result models.LeaveResult
	if val := args.Get(0); val != nil {
		result = val.(models.LeaveResult)
	}
	return result, args.Error(1)
}

func (m *GroupRepositoryMock) Promote(ctx context.Context, chatID, actorID, targetID int) error {
	args := m.Called(ctx, chatID, actorID, targetID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Demote(ctx context.Context, chatID, actorID, targetID int) error {
	args := m.Called(ctx, chatID, actorID, targetID)
	return args.Error(0)
}

func (m *GroupRepositoryMock) Rename(ctx context.Context, chatID, actorID int, title string) (models.Chat, error) {
	args := m.Called(ctx, chatID, actorID, title)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) CreateEvent(ctx context.Context, creatorID int, title string, description *string, startTime *time.Time, participantIDs []int) (models.Event, error) {
	args := m.Called(ctx, creatorID, title, description, startTime, participantIDs)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) ListUserEvents(ctx context.Context, userID int) ([]models.Event, error) {
	args := m.Called(ctx, userID)
	var events []models.Event
	if val := args.Get(0); val != nil {
		events = val.([]models.Event)
	}
	return events, args.Error(1)
}

func (m *EventRepositoryMock) GetEvent(ctx context.Context, eventID, userID int) (models.Event, error) {
	args := m.Called(ctx, eventID, userID)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) UpdateEvent(ctx context.Context, eventID, userID int, upd models.EventUpdate) (models.Event, error) {
	args := m.Called(ctx, eventID, userID, upd)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) DeleteEvent(ctx context.Context, eventID, userID int) error {
	args := m.Called(ctx, eventID, userID)
	return args.Error(0)
}

func (m *EventRepositoryMock) AddParticipants(ctx context.Context, eventID, actorID int, participantIDs []int) ([]int, error) {
	args := m.Called(ctx, eventID, actorID, participantIDs)
	var added []int
	if val := args.Get(0); val != nil {
		added = val.([]int)
	}
	return added, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) SendMessage(ctx context.Context, chatID, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID, userID, skip, limit int) ([]models.Message, int, error) {
	args := m.Called(ctx, chatID, userID, skip, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Int(1), args.Error(2)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID, userID int) (models.Message, error) {
	args := m.Called(ctx, messageID, userID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessage(ctx context.Context, messageID, userID int, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, userID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID, userID int) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.FriendshipRepository = (*FriendshipRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.GroupRepository = (*GroupRepositoryMock)(nil)
var _ repositories.EventRepository = (*EventRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ telemetry.Publisher = (*PublisherMock)(nil)
