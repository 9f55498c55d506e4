package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:3000", cfg.API.URL)
		assert.Equal(t, 30, cfg.API.TimeoutSeconds)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, 10, cfg.Scan.MaxDepth)
		assert.Equal(t, 500, cfg.Scan.PageSize)
		assert.Equal(t, 100, cfg.Scan.UploadBatchSize)
		assert.Equal(t, []string{"**/.DS_Store", "**/@eaDir"}, cfg.Scan.Ignores)
		assert.Empty(t, cfg.Scan.YAMLFields)
		assert.Empty(t, cfg.Staging.Dir)
		assert.False(t, cfg.Storage.Enabled)
		assert.Equal(t, "lair-scans", cfg.Storage.Bucket)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("LAIR_SCANNER_API_URL", "https://lair.example.com")
		t.Setenv("LAIR_SCANNER_API_SCANNER_ID", "scanner-1")
		t.Setenv("LAIR_SCANNER_SCAN_UPLOAD_BATCH_SIZE", "25")
		t.Setenv("LAIR_SCANNER_STORAGE_ENABLED", "true")

		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "https://lair.example.com", cfg.API.URL)
		assert.Equal(t, "scanner-1", cfg.API.ScannerID)
		assert.Equal(t, 25, cfg.Scan.UploadBatchSize)
		assert.True(t, cfg.Storage.Enabled)
	})

	t.Run("DotEnv", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("LAIR_SCANNER_API_TOKEN", "")
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LAIR_SCANNER_API_TOKEN=secret\n"), 0o600))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "secret", cfg.API.Token)
	})
}
