// Package config resolves the data root and loads user settings.
//
// Settings are layered: built-in defaults, then settings.yaml in the data
// root, then environment variables. Only variables that are set override.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// SettingsFile is the settings file name inside the data root.
const SettingsFile = "settings.yaml"

// Settings holds user-tunable behavior.
type Settings struct {
	BackupKeep    int    `yaml:"backup_keep" env:"HORIZONTE_BACKUP_KEEP"`
	Lock          bool   `yaml:"lock" env:"HORIZONTE_LOCK"`
	StrictUpdates bool   `yaml:"strict_updates" env:"HORIZONTE_STRICT_UPDATES"`
	LogLevel      string `yaml:"log_level" env:"HORIZONTE_LOG_LEVEL"`

	Suggest Suggest `yaml:"suggest"`
	Mirror  Mirror  `yaml:"mirror"`
}

// Suggest configures the OpenRouter-compatible suggestion service.
type Suggest struct {
	BaseURL string        `yaml:"base_url" env:"HORIZONTE_SUGGEST_BASE_URL"`
	Model   string        `yaml:"model" env:"HORIZONTE_SUGGEST_MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"HORIZONTE_SUGGEST_TIMEOUT"`

	// APIKey is only read from the environment so it never lands in a file.
	APIKey string `yaml:"-" env:"OPENROUTER_API_KEY"`
}

// Enabled reports whether an API key is configured.
func (s Suggest) Enabled() bool { return strings.TrimSpace(s.APIKey) != "" }

// Mirror configures the off-site backup bucket.
type Mirror struct {
	Bucket    string `yaml:"bucket" env:"HORIZONTE_MIRROR_BUCKET"`
	Prefix    string `yaml:"prefix" env:"HORIZONTE_MIRROR_PREFIX"`
	Region    string `yaml:"region" env:"HORIZONTE_MIRROR_REGION"`
	Endpoint  string `yaml:"endpoint" env:"HORIZONTE_MIRROR_ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"HORIZONTE_MIRROR_PATH_STYLE"`

	// Static credentials; when empty the default AWS credential chain is used.
	AccessKeyID     string `yaml:"-" env:"HORIZONTE_MIRROR_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" env:"HORIZONTE_MIRROR_SECRET_ACCESS_KEY"`
}

// Enabled reports whether a bucket is configured.
func (m Mirror) Enabled() bool { return strings.TrimSpace(m.Bucket) != "" }

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		BackupKeep: 20,
		LogLevel:   "warn",
		Suggest: Suggest{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "google/gemini-2.0-flash-001",
			Timeout: 30 * time.Second,
		},
		Mirror: Mirror{
			Prefix: "horizonte",
			Region: "us-east-1",
		},
	}
}

// Load reads settings for the data root at home. A missing settings file is
// not an error; a malformed one is.
func Load(home string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(filepath.Join(home, SettingsFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, fmt.Errorf("parse %s: %w", SettingsFile, err)
		}
	}

	if err := ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values a user may have mistyped.
func (s Settings) Validate() error {
	var errs []error
	if s.BackupKeep < 1 {
		errs = append(errs, fmt.Errorf("backup_keep must be at least 1, got %d", s.BackupKeep))
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if s.Suggest.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("suggest.timeout must be positive, got %v", s.Suggest.Timeout))
	}
	return errors.Join(errs...)
}

// homeEnv carries the data-root override.
type homeEnv struct {
	Home string `env:"HORIZONTE_HOME"`
}

// ResolveHome picks the data root: the explicit flag value, then
// HORIZONTE_HOME, then ~/.horizonte.
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	var he homeEnv
	if err := ParseEnv(&he); err != nil {
		return "", err
	}
	if he.Home != "" {
		return he.Home, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(dir, ".horizonte"), nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}

// NewLogger builds a text logger writing to w at level. An unknown level
// falls back to warn.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Template is written by init as a starting settings.yaml.
const Template = `# horizonte settings. Environment variables override these values.
backup_keep: 20
lock: false
strict_updates: false
log_level: warn

suggest:
  base_url: https://openrouter.ai/api/v1
  model: google/gemini-2.0-flash-001
  timeout: 30s
  # The API key is read from OPENROUTER_API_KEY only.

mirror:
  bucket: ""
  prefix: horizonte
  region: us-east-1
  endpoint: ""
  path_style: false
`
