package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"social-chat-service/internal/models"
)

// fixedPicker always returns the same index.
type fixedPicker int

func (p fixedPicker) Pick(n int) int {
	return int(p) % n
}

func TestPickSuccessorPrefersSingleAdmin(t *testing.T) {
	remaining := []models.ChatParticipant{
		{ID: 10, UserID: 2, Role: models.RoleParticipant},
		{ID: 11, UserID: 3, Role: models.RoleAdmin},
		{ID: 12, UserID: 4, Role: models.RoleParticipant},
	}

	// With exactly one admin the outcome is deterministic no matter
	// what the picker returns.
	for i := 0; i < 3; i++ {
		successor := pickSuccessor(remaining, fixedPicker(i))
		require.Equal(t, 3, successor.UserID)
	}
}

func TestPickSuccessorAmongAdmins(t *testing.T) {
	remaining := []models.ChatParticipant{
		{ID: 10, UserID: 2, Role: models.RoleAdmin},
		{ID: 11, UserID: 3, Role: models.RoleParticipant},
		{ID: 12, UserID: 4, Role: models.RoleAdmin},
	}

	require.Equal(t, 2, pickSuccessor(remaining, fixedPicker(0)).UserID)
	require.Equal(t, 4, pickSuccessor(remaining, fixedPicker(1)).UserID)
}

func TestPickSuccessorWithoutAdmins(t *testing.T) {
	remaining := []models.ChatParticipant{
		{ID: 10, UserID: 2, Role: models.RoleParticipant},
		{ID: 11, UserID: 3, Role: models.RoleParticipant},
	}

	require.Equal(t, 2, pickSuccessor(remaining, fixedPicker(0)).UserID)
	require.Equal(t, 3, pickSuccessor(remaining, fixedPicker(1)).UserID)
}

func TestRandomPickerBounds(t *testing.T) {
	picker := NewRandomPicker()
	for i := 0; i < 100; i++ {
		got := picker.Pick(3)
		require.GreaterOrEqual(t, got, 0)
		require.Less(t, got, 3)
	}
}

func TestIntersectIDs(t *testing.T) {
	allowed := []int{2, 3, 4}

	require.Equal(t, []int{3, 2}, intersectIDs([]int{3, 2, 9}, allowed, 1))
	require.Empty(t, intersectIDs([]int{8, 9}, allowed, 1))
	// Duplicates and the excluded id are dropped.
	require.Equal(t, []int{4}, intersectIDs([]int{1, 4, 4}, allowed, 1))
	require.Empty(t, intersectIDs(nil, allowed, 1))
}
