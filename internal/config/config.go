// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/treehole-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete treehole configuration.
type Config struct {
	// Version is the configuration schema version.
	Version string `toml:"version" json:"version"`

	// General settings
	General GeneralConfig `toml:"general" json:"general"`

	// Reply generation configuration
	Reply ReplyConfig `toml:"reply" json:"reply"`

	// Local model runtime configuration
	Runtime RuntimeConfig `toml:"runtime" json:"runtime"`

	// Backup service configuration
	Backup BackupConfig `toml:"backup" json:"backup"`

	// Session lock configuration
	Session SessionConfig `toml:"session" json:"session"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	// DataDir is where the message snapshot lives (empty = ~/.treehole)
	DataDir string `toml:"data_dir" json:"data_dir"`
}

// ReplyConfig controls how listener replies are produced.
type ReplyConfig struct {
	// Mode selects the reply engine: "template" or "model"
	// "template" (default): built-in comforting phrase tables, fully offline
	// "model": local model runtime, falls back to templates when unavailable
	Mode string `toml:"mode" json:"mode"`
}

// RuntimeConfig contains local model runtime configuration.
type RuntimeConfig struct {
	// URL is the base URL of the local model runtime
	URL string `toml:"url" json:"url"`
	// Model is the model name requested from the runtime
	Model string `toml:"model" json:"model"`
	// TimeoutSecs is the per-generation timeout in seconds
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// BackupConfig contains remote snapshot backup configuration.
// Backups are disabled until an endpoint and user ID are set.
type BackupConfig struct {
	// Endpoint is the base URL of the backup service (empty = disabled)
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// UserID identifies this user's snapshot slot on the service
	UserID string `toml:"user_id" json:"user_id"`
	// Token is the bearer token sent with backup requests
	Token string `toml:"token" json:"token"`
}

// SessionConfig contains auto-lock configuration.
type SessionConfig struct {
	// LockTimeoutSecs is the idle time before unlocked holes re-lock.
	// Valid range is 60-3600 seconds. Default: 300 (5 minutes).
	LockTimeoutSecs int `toml:"lock_timeout_secs" json:"lock_timeout_secs"`
	// WarningSecs is how long before the lock a warning is shown
	WarningSecs int `toml:"warning_secs" json:"warning_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the color theme: "dark", "light", or "auto"
	Theme string `toml:"theme" json:"theme"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Path is the log file path (empty = ~/.treehole/treehole.log)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// CurrentVersion is the current configuration schema version.
const CurrentVersion = "1.0"

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		General: GeneralConfig{
			DataDir: "",
		},
		Reply: ReplyConfig{
			Mode: "template",
		},
		Runtime: RuntimeConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "qwen2.5:7b",
			TimeoutSecs: 30,
		},
		Backup: BackupConfig{},
		Session: SessionConfig{
			LockTimeoutSecs: 300,
			WarningSecs:     30,
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the treehole configuration directory (~/.treehole),
// creating it with owner-only permissions if it does not exist.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".treehole")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// ConfigPathTOML returns the path to the TOML configuration file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir returns the effective data directory, resolving an empty
// general.data_dir to the config directory.
func (c *Config) DataDir() (string, error) {
	if c.General.DataDir != "" {
		if err := os.MkdirAll(c.General.DataDir, 0700); err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
		return c.General.DataDir, nil
	}
	return ConfigDir()
}

// LogPath returns the effective log file path.
func (c *Config) LogPath() (string, error) {
	if c.Logging.Path != "" {
		return c.Logging.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "treehole.log"), nil
}

// LockTimeout returns the session lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Session.LockTimeoutSecs) * time.Second
}

// LockWarning returns the pre-lock warning window as a duration.
func (c *Config) LockWarning() time.Duration {
	return time.Duration(c.Session.WarningSecs) * time.Second
}

// RuntimeTimeout returns the model runtime timeout as a duration.
func (c *Config) RuntimeTimeout() time.Duration {
	return time.Duration(c.Runtime.TimeoutSecs) * time.Second
}

// BackupConfigured reports whether remote backups are usable.
func (c *Config) BackupConfigured() bool {
	return c.Backup.Endpoint != "" && c.Backup.UserID != ""
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads the configuration from the default location, falling back to
// defaults if no file exists. Environment overrides and validation are
// applied in all cases.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the configuration from the given TOML file. A missing
// file is not an error: defaults are used instead.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		ensureSecurePermissions(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureSecurePermissions tightens config file permissions to owner-only.
// The file may hold a backup token.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0077 != 0 {
		os.Chmod(path, 0600)
	}
}

// =============================================================================
// SAVING
// =============================================================================

// configHeader is written at the top of saved TOML files.
const configHeader = `# treehole configuration
# See https://github.com/jeranaias/treehole-tui for documentation.

`

// Save writes the configuration to the default TOML location.
func (c *Config) Save() error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return c.SaveTOML(path)
}

// SaveTOML writes the configuration as TOML to the given path with
// owner-only permissions.
func (c *Config) SaveTOML(path string) error {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validModes := map[string]bool{"template": true, "model": true}
	if !validModes[strings.ToLower(c.Reply.Mode)] {
		errs = append(errs, ValidationError{
			Field:   "reply.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: template, model", c.Reply.Mode),
		})
	}

	if c.Runtime.URL != "" {
		if _, err := url.Parse(c.Runtime.URL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "runtime.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}

	if c.Runtime.TimeoutSecs < 1 || c.Runtime.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "runtime.timeout_secs",
			Message: fmt.Sprintf("must be 1-600 seconds, got %d", c.Runtime.TimeoutSecs),
		})
	}

	if c.Backup.Endpoint != "" {
		u, err := url.Parse(c.Backup.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, ValidationError{
				Field:   "backup.endpoint",
				Message: fmt.Sprintf("invalid endpoint '%s', must be an http(s) URL", c.Backup.Endpoint),
			})
		}
	}

	if c.Session.LockTimeoutSecs < 60 || c.Session.LockTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "session.lock_timeout_secs",
			Message: fmt.Sprintf("must be 60-3600 seconds, got %d", c.Session.LockTimeoutSecs),
		})
	}

	if c.Session.WarningSecs < 0 || c.Session.WarningSecs >= c.Session.LockTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "session.warning_secs",
			Message: fmt.Sprintf("must be non-negative and shorter than the lock timeout, got %d", c.Session.WarningSecs),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Reply.Mode == "" {
		c.Reply.Mode = defaults.Reply.Mode
	}
	if c.Runtime.URL == "" {
		c.Runtime.URL = defaults.Runtime.URL
	}
	if c.Runtime.Model == "" {
		c.Runtime.Model = defaults.Runtime.Model
	}
	if c.Runtime.TimeoutSecs == 0 {
		c.Runtime.TimeoutSecs = defaults.Runtime.TimeoutSecs
	}
	if c.Session.LockTimeoutSecs == 0 {
		c.Session.LockTimeoutSecs = defaults.Session.LockTimeoutSecs
	}
	if c.Session.WarningSecs == 0 {
		c.Session.WarningSecs = defaults.Session.WarningSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TREEHOLE_DATA_DIR: overrides general.data_dir
//   - TREEHOLE_REPLY_MODE: overrides reply.mode
//   - TREEHOLE_RUNTIME_URL: overrides runtime.url
//   - TREEHOLE_MODEL: overrides runtime.model
//   - TREEHOLE_BACKUP_ENDPOINT: overrides backup.endpoint
//   - TREEHOLE_BACKUP_USER: overrides backup.user_id
//   - TREEHOLE_BACKUP_TOKEN: overrides backup.token
//   - TREEHOLE_LOCK_TIMEOUT_SECS: overrides session.lock_timeout_secs
//   - TREEHOLE_THEME: overrides ui.theme
//   - TREEHOLE_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("TREEHOLE_DATA_DIR"); dir != "" {
		c.General.DataDir = dir
	}
	if mode := os.Getenv("TREEHOLE_REPLY_MODE"); mode != "" {
		c.Reply.Mode = mode
	}
	if u := os.Getenv("TREEHOLE_RUNTIME_URL"); u != "" {
		c.Runtime.URL = u
	}
	if model := os.Getenv("TREEHOLE_MODEL"); model != "" {
		c.Runtime.Model = model
	}
	if ep := os.Getenv("TREEHOLE_BACKUP_ENDPOINT"); ep != "" {
		c.Backup.Endpoint = ep
	}
	if user := os.Getenv("TREEHOLE_BACKUP_USER"); user != "" {
		c.Backup.UserID = user
	}
	if token := os.Getenv("TREEHOLE_BACKUP_TOKEN"); token != "" {
		c.Backup.Token = token
	}
	if secs := os.Getenv("TREEHOLE_LOCK_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.Session.LockTimeoutSecs = n
		}
	}
	if theme := os.Getenv("TREEHOLE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("TREEHOLE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}
