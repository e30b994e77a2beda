package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("returns defaults when file missing", func(t *testing.T) {
		loader := NewLoader(filepath.Join(t.TempDir(), "missing.json"))

		cfg, err := loader.Load()
		require.NoError(t, err)

		assert.Equal(t, "anthropic", cfg.Model.Provider)
		assert.Equal(t, 50, cfg.Agent.HistoryWindow)
		assert.NotEmpty(t, cfg.Database.Path)
		assert.NotEmpty(t, cfg.Logging.File)
	})

	t.Run("loads values from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "taskwise.json")

		content := `{
			"model": {"provider": "openai", "name": "gpt-4-turbo", "temperature": 0.2},
			"agent": {"history_window": 10},
			"data_dir": "` + tmpDir + `"
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

		loader := NewLoader(configPath)
		cfg, err := loader.Load()
		require.NoError(t, err)

		assert.Equal(t, "openai", cfg.Model.Provider)
		assert.Equal(t, "gpt-4-turbo", cfg.Model.Name)
		assert.Equal(t, 0.2, cfg.Model.Temperature)
		assert.Equal(t, 10, cfg.Agent.HistoryWindow)
		assert.Equal(t, filepath.Join(tmpDir, "taskwise.db"), cfg.Database.Path)
	})

	t.Run("fails on malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "taskwise.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0600))

		_, err := NewLoader(configPath).Load()
		assert.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	t.Run("round trips config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "taskwise.json")
		loader := NewLoader(configPath)

		cfg := DefaultConfig()
		cfg.Model.Provider = "openai"
		cfg.Model.Name = "gpt-4"
		cfg.Agent.HistoryWindow = 25

		require.NoError(t, loader.Save(cfg))

		loaded, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "openai", loaded.Model.Provider)
		assert.Equal(t, "gpt-4", loaded.Model.Name)
		assert.Equal(t, 25, loaded.Agent.HistoryWindow)
	})
}
