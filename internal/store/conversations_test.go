package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationCreate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	t.Run("creates with distinct ids", func(t *testing.T) {
		a, err := s.Conversations().Create(ctx, "user-1")
		require.NoError(t, err)
		b, err := s.Conversations().Create(ctx, "user-1")
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, "user-1", a.UserID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("rejects empty user id", func(t *testing.T) {
		_, err := s.Conversations().Create(ctx, "")
		assert.Error(t, err)
	})
}

func TestConversationGetByID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	conv, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)

	t.Run("returns owned conversation", func(t *testing.T) {
		got, err := s.Conversations().GetByID(ctx, conv.ID, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, conv.ID, got.ID)
	})

	t.Run("hides other owner's conversation", func(t *testing.T) {
		got, err := s.Conversations().GetByID(ctx, conv.ID, "bob")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("returns nil for unknown id", func(t *testing.T) {
		got, err := s.Conversations().GetByID(ctx, "nope", "alice")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestConversationTouch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	conv, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, s.Conversations().Touch(ctx, conv.ID))

	got, err := s.Conversations().GetByID(ctx, conv.ID, "alice")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(conv.UpdatedAt))
}

func TestConversationListByUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)
	_, err = s.Conversations().Create(ctx, "bob")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)

	convs, err := s.Conversations().ListByUser(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	// Most recently active first
	assert.Equal(t, second.ID, convs[0].ID)
	assert.Equal(t, first.ID, convs[1].ID)
}

func TestConversationDeleteIdleSince(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	stale, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)
	_, err = s.Messages().Append(ctx, stale.ID, RoleUser, "old message", nil)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)

	fresh, err := s.Conversations().Create(ctx, "alice")
	require.NoError(t, err)

	n, err := s.Conversations().DeleteIdleSince(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.Conversations().GetByID(ctx, stale.ID, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)

	kept, err := s.Conversations().GetByID(ctx, fresh.ID, "alice")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	// Cascade removed the stale conversation's messages
	count, err := s.Messages().CountByConversation(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
