// Package config loads mentor.jsonc and applies environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address string `json:"address"`
	DataDir string `json:"data_dir"`
	LogDir  string `json:"log_dir"`
	LogJSON bool   `json:"log_json"`
}

// ModelConfig holds model provider settings.
// APIKey may be overridden by the MENTOR_API_KEY environment variable.
type ModelConfig struct {
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url"`
	ChatModel    string `json:"chat_model"`
	PlannerModel string `json:"planner_model"`
}

// LimitsConfig holds per-request and context-window limits
type LimitsConfig struct {
	SessionHistory      int     `json:"session_history"`       // turns of current-session context
	CrossSessionHistory int     `json:"cross_session_history"` // turns of cross-session context
	RateRPS             float64 `json:"rate_rps"`
	RateBurst           int     `json:"rate_burst"`
}

// CleanupConfig holds background cleanup settings
type CleanupConfig struct {
	Enabled           bool `json:"enabled"`
	IntervalMinutes   int  `json:"interval_minutes"`
	NotificationDays  int  `json:"notification_days"`   // purge read notifications older than this
	EmptySessionHours int  `json:"empty_session_hours"` // purge sessions with no turns after this
	DiskWarnPercent   int  `json:"disk_warn_percent"`
	DiskErrorPercent  int  `json:"disk_error_percent"`
}

// BackupConfig holds data-directory backup settings
type BackupConfig struct {
	Enabled       bool   `json:"enabled"`
	Directory     string `json:"directory"`
	Retention     int    `json:"retention"` // number of snapshots to keep
	IntervalHours int    `json:"interval_hours"`
}

// Config is the full service configuration loaded from mentor.jsonc
type Config struct {
	Server  ServerConfig  `json:"server"`
	Model   ModelConfig   `json:"model"`
	Limits  LimitsConfig  `json:"limits"`
	Cleanup CleanupConfig `json:"cleanup"`
	Backup  BackupConfig  `json:"backup"`

	// ConfigDir is the directory the config file was loaded from
	ConfigDir string `json:"-"`
}

// Default returns the configuration defaults applied before the file is read
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8000",
			DataDir: "data",
			LogDir:  "logs",
			LogJSON: false,
		},
		Model: ModelConfig{
			BaseURL:      "https://api.mistral.ai/v1",
			ChatModel:    "mistral-large-latest",
			PlannerModel: "mistral-small-latest",
		},
		Limits: LimitsConfig{
			SessionHistory:      10,
			CrossSessionHistory: 20,
			RateRPS:             10,
			RateBurst:           20,
		},
		Cleanup: CleanupConfig{
			Enabled:           true,
			IntervalMinutes:   60,
			NotificationDays:  30,
			EmptySessionHours: 24,
			DiskWarnPercent:   80,
			DiskErrorPercent:  90,
		},
		Backup: BackupConfig{
			Enabled:       false,
			Directory:     "backups",
			Retention:     7,
			IntervalHours: 24,
		},
	}
}

// FindConfigPath locates mentor.jsonc, checking the given directory first
// and then the current working directory.
func FindConfigPath(configDir string) (string, error) {
	candidates := []string{}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, "mentor.jsonc"))
	}
	candidates = append(candidates, "mentor.jsonc")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("mentor.jsonc not found (looked in %v)", candidates)
}

// Load reads mentor.jsonc from configDir, strips comments, and applies
// environment overrides. A missing file is not an error: defaults plus
// environment are returned so the server can start with MENTOR_API_KEY alone.
func Load(configDir string) (*Config, error) {
	cfg := Default()

	path, err := FindConfigPath(configDir)
	if err == nil {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read config: %w", readErr)
		}
		if err := json.Unmarshal(StripJSONComments(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.ConfigDir = filepath.Dir(path)
	}

	if key := os.Getenv("MENTOR_API_KEY"); key != "" {
		cfg.Model.APIKey = key
	}

	return cfg, nil
}

// HasAPIKey returns true if a model API key is configured
func (c *Config) HasAPIKey() bool {
	return c.Model.APIKey != ""
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Model.ChatModel == "" {
		return fmt.Errorf("model.chat_model is required")
	}
	if c.Limits.SessionHistory < 0 || c.Limits.CrossSessionHistory < 0 {
		return fmt.Errorf("limits history windows must be non-negative")
	}
	return nil
}
