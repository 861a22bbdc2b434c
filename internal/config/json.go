package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dkarpov/studysync/internal/remote"
	"github.com/dkarpov/studysync/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "500ms"
// or as integer nanoseconds. Zero/absent fields keep their defaults.
type jsonConfig struct {
	RemoteBaseURL        string          `json:"remote_base_url"`
	DatabasePath         string          `json:"database_path"`
	RequestTimeout       timex.Duration  `json:"request_timeout"`
	DownloadWindow       int             `json:"download_window"`
	MaxRetries           int             `json:"max_retries"`
	StabilizationDelay   timex.Duration  `json:"stabilization_delay"`
	RefreshDebounce      timex.Duration  `json:"refresh_debounce"`
	ProgressDisplayDelay timex.Duration  `json:"progress_display_delay"`
	AuthCacheTTL         timex.Duration  `json:"auth_cache_ttl"`
	S3                   *remote.S3Config `json:"s3"`
}

func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if jc.RemoteBaseURL != "" {
		cfg.RemoteBaseURL = jc.RemoteBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DownloadWindow > 0 {
		cfg.DownloadWindow = jc.DownloadWindow
	}
	if jc.MaxRetries > 0 {
		cfg.MaxRetries = jc.MaxRetries
	}
	if jc.StabilizationDelay.Duration > 0 {
		cfg.StabilizationDelay = jc.StabilizationDelay.Duration
	}
	if jc.RefreshDebounce.Duration > 0 {
		cfg.RefreshDebounce = jc.RefreshDebounce.Duration
	}
	if jc.ProgressDisplayDelay.Duration > 0 {
		cfg.ProgressDisplayDelay = jc.ProgressDisplayDelay.Duration
	}
	if jc.AuthCacheTTL.Duration > 0 {
		cfg.AuthCacheTTL = jc.AuthCacheTTL.Duration
	}
	if jc.S3 != nil {
		cfg.S3 = jc.S3
	}
	return nil
}
