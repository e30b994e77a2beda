package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nadia/taskwise/internal/config"
	"github.com/nadia/taskwise/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSweeper(t *testing.T, maxAgeDays int) (*Sweeper, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	sw, err := NewSweeper(st, config.RetentionConfig{
		Enabled:    true,
		MaxAgeDays: maxAgeDays,
		Schedule:   "0 3 * * *",
	}, zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	require.NoError(t, err)

	return sw, st
}

func TestNewSweeper(t *testing.T) {
	t.Run("should create sweeper with valid config", func(t *testing.T) {
		sw, _ := setupSweeper(t, 30)

		assert.NotNil(t, sw)
		assert.Equal(t, 30*24*time.Hour, sw.maxAge)
	})

	t.Run("should reject a non-positive max age", func(t *testing.T) {
		st, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
		require.NoError(t, err)
		defer st.Close()

		_, err = NewSweeper(st, config.RetentionConfig{MaxAgeDays: 0, Schedule: "0 3 * * *"}, zerolog.Nop())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max age")
	})

	t.Run("should reject an invalid schedule", func(t *testing.T) {
		st, err := store.Open(filepath.Join(t.TempDir(), "taskwise.db"))
		require.NoError(t, err)
		defer st.Close()

		_, err = NewSweeper(st, config.RetentionConfig{MaxAgeDays: 30, Schedule: "not a schedule"}, zerolog.Nop())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "schedule")
	})
}

func TestSweepOnce(t *testing.T) {
	t.Run("should keep recent conversations", func(t *testing.T) {
		sw, st := setupSweeper(t, 30)
		ctx := context.Background()

		conv, err := st.Conversations().Create(ctx, "alice")
		require.NoError(t, err)

		deleted, err := sw.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)

		kept, err := st.Conversations().GetByID(ctx, conv.ID, "alice")
		require.NoError(t, err)
		assert.NotNil(t, kept)
	})

	t.Run("should prune conversations older than the cutoff", func(t *testing.T) {
		sw, st := setupSweeper(t, 30)
		ctx := context.Background()

		conv, err := st.Conversations().Create(ctx, "alice")
		require.NoError(t, err)
		_, err = st.Messages().Append(ctx, conv.ID, store.RoleUser, "old", nil)
		require.NoError(t, err)

		// Everything is younger than 30 days, so age the sweeper's
		// window down to zero to make the conversation stale.
		sw.maxAge = 0
		time.Sleep(5 * time.Millisecond)

		deleted, err := sw.SweepOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		gone, err := st.Conversations().GetByID(ctx, conv.ID, "alice")
		require.NoError(t, err)
		assert.Nil(t, gone)

		count, err := st.Messages().CountByConversation(ctx, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestSweeperLifecycle(t *testing.T) {
	t.Run("should start and stop cleanly", func(t *testing.T) {
		sw, _ := setupSweeper(t, 30)

		require.NoError(t, sw.Start())
		assert.Error(t, sw.Start())

		sw.Stop()
		sw.Stop()
	})
}
