package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/lululau/calgrid/internal/holidays"
	"github.com/lululau/calgrid/internal/locale"
	"github.com/lululau/calgrid/internal/state"
)

const (
	defaultTodayRefresh = "0 0 * * *"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

// Config is the host app configuration.
//
// Watch reloads locale, locales, show_lunar, no_color and log_level into a
// running app. start_mode, holidays_file, holidays_url, today_refresh,
// log_file and log_format only take effect at startup.
type Config struct {
	// Locale picks the header and weekday strings, e.g. "ko", "en-US".
	Locale string `yaml:"locale"`

	// Locales adds or overrides locale tables.
	Locales locale.Table `yaml:"locales,omitempty"`

	// StartMode is "month" (default) or "week". Startup only.
	StartMode string `yaml:"start_mode"`

	// ShowLunar adds lunar day and solar term labels under each date.
	ShowLunar bool `yaml:"show_lunar"`

	NoColor bool `yaml:"no_color"`

	// HolidaysFile overrides the cached holidays file.
	HolidaysFile string `yaml:"holidays_file,omitempty"`
	HolidaysURL  string `yaml:"holidays_url"`

	// TodayRefresh is a cron spec for re-rendering when the date rolls over.
	// Startup only.
	TodayRefresh string `yaml:"today_refresh"`

	// LogFile receives logs while the TUI owns the terminal. Empty disables
	// logging in interactive mode. LogFile and LogFormat are startup only;
	// LogLevel follows reloads.
	LogFile   string `yaml:"log_file,omitempty"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Locale:       locale.Default,
		StartMode:    state.ModeMonth.String(),
		HolidaysURL:  holidays.DefaultURL,
		TodayRefresh: defaultTodayRefresh,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
	}
}

// DefaultPath is config.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "calgrid", "config.yaml"), nil
}

// Normalize fills in missing values so that partially written files still
// behave.
func (c *Config) Normalize() {
	if c.Locale == "" {
		c.Locale = locale.Default
	}
	if _, err := state.ParseMode(c.StartMode); err != nil || c.StartMode == "" {
		c.StartMode = state.ModeMonth.String()
	}
	if c.HolidaysURL == "" {
		c.HolidaysURL = holidays.DefaultURL
	}
	if c.TodayRefresh == "" {
		c.TodayRefresh = defaultTodayRefresh
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		c.LogFormat = defaultLogFormat
	}
}

// Mode returns the parsed start mode.
func (c *Config) Mode() state.Mode {
	m, _ := state.ParseMode(c.StartMode)
	return m
}

// LocaleTable merges the configured tables over the built-in ones.
func (c *Config) LocaleTable() (locale.Table, error) {
	return locale.Merge(c.Locales)
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the YAML file at path. A missing file is created with the
// defaults and 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Callers may still run with the defaults.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Normalize()
	if _, err := cfg.LocaleTable(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Watch reloads path whenever it is written and hands the new config to
// apply. It watches the parent directory so that editors replacing the file
// by rename are picked up too. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, apply func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed creating watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed adding watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				slog.Warn("failed reloading config", "path", path, "err", err)
				continue
			}
			slog.Info("config reloaded", "path", path)
			apply(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "err", err)
		}
	}
}
