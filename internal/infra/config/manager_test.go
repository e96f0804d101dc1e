package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/whatstask/internal/domain"
)

func TestManager_GetDataConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		dataDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		writeConfig(t, dataDir, configContent)

		info := NewManagerWithGlobalDir(dataDir, "").GetDataConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		dataDir := t.TempDir()

		info := NewManagerWithGlobalDir(dataDir, "").GetDataConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		globalDir := t.TempDir()
		writeConfig(t, globalDir, "[log]\nlevel = \"warn\"")

		info := NewManagerWithGlobalDir("", globalDir).GetGlobalConfigInfo()

		assert.True(t, info.Exists)
		assert.Contains(t, info.Content, "warn")
	})

	t.Run("no global directory", func(t *testing.T) {
		info := NewManagerWithGlobalDir(t.TempDir(), "").GetGlobalConfigInfo()

		assert.Empty(t, info.Path)
		assert.False(t, info.Exists)
	})
}

func TestManager_InitDataConfig(t *testing.T) {
	// Setup
	dataDir := filepath.Join(t.TempDir(), ".whatstask")
	manager := NewManagerWithGlobalDir(dataDir, "")

	// Execute
	err := manager.InitDataConfig(domain.NewDefaultConfig())

	// Assert
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dataDir, domain.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), `backend = "json"`)
	assert.Contains(t, string(content), "[notify.rate_limit]")

	// A second init must not overwrite
	assert.ErrorIs(t, manager.InitDataConfig(domain.NewDefaultConfig()), domain.ErrConfigExists)
}

func TestManager_InitGlobalConfig(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		globalDir := filepath.Join(t.TempDir(), "config", "whatstask")
		manager := NewManagerWithGlobalDir("", globalDir)

		require.NoError(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))

		assert.True(t, manager.GetGlobalConfigInfo().Exists)
	})

	t.Run("no global directory", func(t *testing.T) {
		manager := NewManagerWithGlobalDir(t.TempDir(), "")

		assert.Error(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))
	})

	t.Run("nil config", func(t *testing.T) {
		manager := NewManagerWithGlobalDir("", t.TempDir())

		assert.ErrorIs(t, manager.InitGlobalConfig(nil), domain.ErrConfigNil)
	})
}
