// ABOUTME: hazardwatch configuration management with platform and history selection
// ABOUTME: Loads JSON settings through viper and builds the configured components

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/spf13/viper"
)

// Config stores hazardwatch configuration.
type Config struct {
	Locale   string         `mapstructure:"locale"`
	Platform PlatformConfig `mapstructure:"platform"`
	API      APIConfig      `mapstructure:"api"`
	History  HistoryConfig  `mapstructure:"history"`
	User     UserConfig     `mapstructure:"user"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PlatformConfig selects where positions come from.
type PlatformConfig struct {
	// Kind is "ip", "nmea", "fixed" or "none".
	Kind         string        `mapstructure:"kind"`
	IPAPIURL     string        `mapstructure:"ipapi_url"`
	Consent      string        `mapstructure:"consent"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Device       string        `mapstructure:"device"`
	BaudRate     int           `mapstructure:"baud_rate"`
	Latitude     float64       `mapstructure:"latitude"`
	Longitude    float64       `mapstructure:"longitude"`
	Accuracy     float64       `mapstructure:"accuracy"`
}

// APIConfig points at the risk service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Radius  float64       `mapstructure:"radius"`
}

// HistoryConfig selects where dashboard history comes from.
type HistoryConfig struct {
	// Backend is "remote" (the risk service) or "local" (SQLite).
	Backend string `mapstructure:"backend"`
	// DataDir holds history.db. Supports ~ expansion.
	DataDir string `mapstructure:"data_dir"`
}

// UserConfig describes the signed-in account.
type UserConfig struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
	FullName string `mapstructure:"full_name"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EnvPrefix prefixes environment overrides, e.g. HAZARDWATCH_API_TOKEN.
const EnvPrefix = "HAZARDWATCH"

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", location.DefaultLocale)

	v.SetDefault("platform.kind", "ip")
	v.SetDefault("platform.ipapi_url", "http://ip-api.com/json")
	v.SetDefault("platform.consent", string(models.PermissionPrompt))
	v.SetDefault("platform.poll_interval", "30s")
	v.SetDefault("platform.device", "")
	v.SetDefault("platform.baud_rate", 9600)
	v.SetDefault("platform.latitude", 0.0)
	v.SetDefault("platform.longitude", 0.0)
	v.SetDefault("platform.accuracy", 0.0)

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.radius", 1000.0)

	v.SetDefault("history.backend", "remote")
	v.SetDefault("history.data_dir", "")

	v.SetDefault("user.id", "")
	v.SetDefault("user.username", "")
	v.SetDefault("user.full_name", "")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.History.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.History.DataDir)
}

// defaultDataDir returns the default XDG data directory for hazardwatch.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "hazardwatch")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "hazardwatch", "config.json")
}

// Load reads config from the default path. A missing file yields defaults,
// which are written out so the user has something to edit.
func Load() (*Config, error) {
	path := GetConfigPath()
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if saveErr := cfg.Save(); saveErr != nil {
			log.Warn("could not save default config", "path", path, "err", saveErr)
		}
	}
	return cfg, nil
}

// LoadFile reads config from path. A missing file yields defaults plus
// environment overrides.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("check config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path as JSON.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil { //nolint:gosec // user config directory
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.Set("locale", c.Locale)
	v.Set("platform", map[string]any{
		"kind":          c.Platform.Kind,
		"ipapi_url":     c.Platform.IPAPIURL,
		"consent":       c.Platform.Consent,
		"poll_interval": c.Platform.PollInterval.String(),
		"device":        c.Platform.Device,
		"baud_rate":     c.Platform.BaudRate,
		"latitude":      c.Platform.Latitude,
		"longitude":     c.Platform.Longitude,
		"accuracy":      c.Platform.Accuracy,
	})
	v.Set("api", map[string]any{
		"base_url": c.API.BaseURL,
		"token":    c.API.Token,
		"timeout":  c.API.Timeout.String(),
		"radius":   c.API.Radius,
	})
	v.Set("history", map[string]any{
		"backend":  c.History.Backend,
		"data_dir": c.History.DataDir,
	})
	v.Set("user", map[string]any{
		"id":        c.User.ID,
		"username":  c.User.Username,
		"full_name": c.User.FullName,
	})
	v.Set("telegram", map[string]any{
		"enabled":   c.Telegram.Enabled,
		"bot_token": c.Telegram.BotToken,
		"chat_id":   c.Telegram.ChatID,
	})
	v.Set("logging", map[string]any{
		"level":  c.Logging.Level,
		"format": c.Logging.Format,
	})

	v.SetConfigType("json")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if !location.HasLocale(c.Locale) {
		return fmt.Errorf("locale must be one of ko, en (got %q)", c.Locale)
	}

	switch c.Platform.Kind {
	case "ip":
		if c.Platform.IPAPIURL == "" {
			return fmt.Errorf("platform.ipapi_url is required for the ip platform")
		}
		if _, err := models.ParsePermissionState(c.Platform.Consent); err != nil {
			return fmt.Errorf("platform.consent: %w", err)
		}
	case "nmea":
		if c.Platform.Device == "" {
			return fmt.Errorf("platform.device is required for the nmea platform")
		}
		if c.Platform.BaudRate <= 0 {
			return fmt.Errorf("platform.baud_rate must be positive")
		}
	case "fixed":
		if err := models.ValidateCoordinates(c.Platform.Latitude, c.Platform.Longitude); err != nil {
			return fmt.Errorf("platform position: %w", err)
		}
	case "none":
	default:
		return fmt.Errorf("unknown platform: %q", c.Platform.Kind)
	}
	if c.Platform.PollInterval < time.Second {
		return fmt.Errorf("platform.poll_interval must be at least 1s")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.API.Radius <= 0 {
		return fmt.Errorf("api.radius must be positive")
	}

	switch c.History.Backend {
	case "remote", "local":
	default:
		return fmt.Errorf("unknown history backend: %q", c.History.Backend)
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown logging.level: %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown logging.format: %q", c.Logging.Format)
	}
	return nil
}
