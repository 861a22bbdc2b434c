package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.RemoteBaseURL)
	assert.Equal(t, "studysync.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.DownloadWindow)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.StabilizationDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDebounce)
	assert.Equal(t, 7*24*time.Hour, cfg.AuthCacheTTL)
	assert.Nil(t, cfg.S3)
}

func TestLoad_JSONOverlayKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"remote_base_url": "https://portal.school.example",
		"download_window": 5,
		"stabilization_delay": "5s",
		"s3": {"bucket": "materials", "region": "eu-west-1"}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://portal.school.example", cfg.RemoteBaseURL)
	assert.Equal(t, 5, cfg.DownloadWindow)
	assert.Equal(t, 5*time.Second, cfg.StabilizationDelay)
	require.NotNil(t, cfg.S3)
	assert.Equal(t, "materials", cfg.S3.Bucket)

	// Untouched fields keep their defaults.
	assert.Equal(t, "studysync.db", cfg.DatabasePath)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestLoad_DurationAsNanoseconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"request_timeout": 1000000000}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.RequestTimeout)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoad_MalformedJSONFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
