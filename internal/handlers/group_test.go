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

func setupGroupRouter(handler *GroupHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/chats/groups", handler.CreateGroup)
	r.GET("/chats/:chat_id/members", handler.GetMembers)
	r.POST("/chats/:chat_id/members", handler.AddMembers)
	r.DELETE("/chats/:chat_id/members/:user_id", handler.RemoveMember)
	r.POST("/chats/:chat_id/leave", handler.Leave)
	r.POST("/chats/:chat_id/members/:user_id/promote", handler.Promote)
	r.POST("/chats/:chat_id/members/:user_id/demote", handler.Demote)
	r.PUT("/chats/:chat_id/title", handler.Rename)
	return r
}

func newGroupHandler(repo *mocks.GroupRepositoryMock) *GroupHandler {
	return NewGroupHandler(repo, ws.NewHub(), nil)
}

func TestCreateGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	title := "trip"
	groupRepo.On("CreateGroupChat", mock.Anything, 1, "trip", []int{2, 3}).
		Return(models.Chat{ID: 5, Title: &title, IsGroup: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/groups", bytes.NewBufferString(`{"title":"trip","friend_ids":[2,3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestCreateGroupInvalidBody(t *testing.T) {
	router := setupGroupRouter(newGroupHandler(new(mocks.GroupRepositoryMock)))

	req := httptest.NewRequest(http.MethodPost, "/chats/groups", bytes.NewBufferString(`{"title":5}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGroupNoValidFriends(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("CreateGroupChat", mock.Anything, 1, "trip", []int{9}).
		Return(models.Chat{}, repositories.ErrNoValidFriends).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/groups", bytes.NewBufferString(`{"title":"trip","friend_ids":[9]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"you can only add your own friends"}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestAddMembersSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("AddMembers", mock.Anything, 5, 1, []int{2, 3}).Return([]int{2, 3}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/members", bytes.NewBufferString(`{"friend_ids":[2,3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"added_user_ids":[2,3]}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestAddMembersAllAlreadyMembers(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("AddMembers", mock.Anything, 5, 1, []int{2}).
		Return(nil, repositories.ErrAllAlreadyMembers).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/members", bytes.NewBufferString(`{"friend_ids":[2]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestGetMembersForbiddenForNonMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("GetMembers", mock.Anything, 5, 1).
		Return(nil, repositories.ErrNotGroupMember).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats/5/members", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestRemoveMemberSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("RemoveMember", mock.Anything, 5, 1, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5/members/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"removed_user_id":3}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestRemoveMemberForbiddenRole(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("RemoveMember", mock.Anything, 5, 1, 3).
		Return(repositories.ErrTargetNotMember).Once()

	req := httptest.NewRequest(http.MethodDelete, "/chats/5/members/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestLeaveRegularMember(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("Leave", mock.Anything, 5, 1).Return(models.LeaveResult{}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"You have left the group"}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestLeaveCreatorHandsOver(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("Leave", mock.Anything, 5, 1).Return(models.LeaveResult{NewCreatorID: 4}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"You left the group. New creator is user 4"}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestLeaveLastMemberDissolvesGroup(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("Leave", mock.Anything, 5, 1).Return(models.LeaveResult{Dissolved: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/leave", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"You were the only member. Group deleted."}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestPromoteSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("Promote", mock.Anything, 5, 1, 3).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/members/3/promote", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"User 3 has been promoted to admin"}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestDemoteForbiddenForAdmin(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	groupRepo.On("Demote", mock.Anything, 5, 1, 3).
		Return(repositories.ErrNotGroupMember).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats/5/members/3/demote", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestRenameSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	router := setupGroupRouter(newGroupHandler(groupRepo))

	newTitle := "renamed"
	groupRepo.On("Rename", mock.Anything, 5, 1, "renamed").
		Return(models.Chat{ID: 5, Title: &newTitle, IsGroup: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/chats/5/title", bytes.NewBufferString(`{"title":"renamed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"Group title updated successfully","new_title":"renamed"}`, rec.Body.String())
	groupRepo.AssertExpectations(t)
}

func TestRenameInvalidChatID(t *testing.T) {
	router := setupGroupRouter(newGroupHandler(new(mocks.GroupRepositoryMock)))

	req := httptest.NewRequest(http.MethodPut, "/chats/bad/title", bytes.NewBufferString(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
