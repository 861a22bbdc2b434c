// Package config holds runtime settings for the offline engine.
package config

import (
	"time"

	"github.com/dkarpov/studysync/internal/remote"
)

// Config holds runtime settings for the offline engine.
//
// Durations: StabilizationDelay spaces reconnect-triggered sync away from the
// connectivity event; RefreshDebounce coalesces download-completion refreshes;
// ProgressDisplayDelay keeps completed downloads visible briefly.
type Config struct {
	// RemoteBaseURL is the portal backend the engine talks to.
	RemoteBaseURL string

	// DatabasePath is the SQLite file backing the local store.
	DatabasePath string

	RequestTimeout time.Duration

	// DownloadWindow bounds concurrent fetches in a batch download.
	DownloadWindow int

	// MaxRetries bounds failed replay attempts per queued action.
	MaxRetries int

	StabilizationDelay   time.Duration
	RefreshDebounce      time.Duration
	ProgressDisplayDelay time.Duration

	// AuthCacheTTL is how long cached sessions allow offline login.
	AuthCacheTTL time.Duration

	// S3, when set, makes the engine fetch material blobs straight from an
	// object-storage bucket instead of through the portal API.
	S3 *remote.S3Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "studysync.db"
	c.RequestTimeout = 30 * time.Second
	c.DownloadWindow = 3
	c.MaxRetries = 3
	c.StabilizationDelay = 2 * time.Second
	c.RefreshDebounce = 500 * time.Millisecond
	c.ProgressDisplayDelay = 2 * time.Second
	c.AuthCacheTTL = 7 * 24 * time.Hour
}

// Load constructs a Config: defaults first, then values from the JSON file at
// path (if non-empty) overlaid on top.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
