package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-chat-service/internal/mocks"
	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/ws"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/chats/:chat_id/messages", handler.SendMessage)
	r.GET("/chats/:chat_id/messages", handler.GetChatMessages)
	r.GET("/messages/:message_id", handler.GetMessage)
	r.PUT("/messages/:message_id", handler.UpdateMessage)
	r.DELETE("/messages/:message_id", handler.DeleteMessage)
	return r
}

func newMessageHandler(repo *mocks.MessageRepositoryMock) *MessageHandler {
	return NewMessageHandler(repo, ws.NewHub(), nil)
}

func TestSendMessageSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("SendMessage", mock.Anything, 5, 1, "hello").
		Return(models.Message{ID: 3, ChatID: 5, SenderID: 1, Content: "hello"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestSendMessageNotMember(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("SendMessage", mock.Anything, 5, 1, "hello").
		Return(models.Message{}, repositories.ErrNotChatMember).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/messages", bytes.NewBufferString(`{"content":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetChatMessagesPagination(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("ListMessages", mock.Anything, 5, 1, 10, 20).
		Return([]models.Message{{ID: 1, ChatID: 5, SenderID: 1, Content: "hi"}}, 31, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/messages?skip=10&limit=20", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total":31`)
	require.Contains(t, rec.Body.String(), `"skip":10`)
	repo.AssertExpectations(t)
}

func TestGetChatMessagesInvalidLimit(t *testing.T) {
	router := setupMessageRouter(newMessageHandler(new(mocks.MessageRepositoryMock)))

	req := httptest.NewRequest(http.MethodGet, "/chats/5/messages?limit=500", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMessageNotSender(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("UpdateMessage", mock.Anything, 3, 1, "edit").
		Return(models.Message{}, repositories.ErrNotMessageSender).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/3", bytes.NewBufferString(`{"content":"edit"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteMessageSuccess(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("GetMessage", mock.Anything, 3, 1).
		Return(models.Message{ID: 3, ChatID: 5, SenderID: 1, Content: "bye"}, nil).Once()
	repo.On("DeleteMessage", mock.Anything, 3, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Message deleted successfully"}`, rec.Body.String())
	repo.AssertExpectations(t)
}

func TestDeleteMessageNotFound(t *testing.T) {
	repo := new(mocks.MessageRepositoryMock)
	router := setupMessageRouter(newMessageHandler(repo))

	repo.On("GetMessage", mock.Anything, 3, 1).
		Return(models.Message{}, repositories.ErrMessageNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}
