// ABOUTME: Tests for hazardwatch config functionality
// ABOUTME: Verifies load, save, env overrides, validation, and component factories

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/hazardwatch/internal/notify"
	"github.com/harper/hazardwatch/internal/platform"
	"github.com/harper/hazardwatch/internal/riskapi"
	"github.com/harper/hazardwatch/internal/storage"
)

// defaults returns a config populated the way Load does with no file.
func defaults(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath returned non-absolute path: %s", path)
	}
}

func TestGetConfigPathWithXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := GetConfigPath()
	if !strings.HasPrefix(path, tmpDir) {
		t.Errorf("GetConfigPath should use XDG_CONFIG_HOME, got %s", path)
	}
	if !strings.HasSuffix(path, filepath.Join("hazardwatch", "config.json")) {
		t.Errorf("GetConfigPath should end with hazardwatch/config.json, got %s", path)
	}
}

func TestGetConfigPathWithoutXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := GetConfigPath()
	if !strings.Contains(path, ".config") {
		t.Errorf("GetConfigPath should use .config fallback, got %s", path)
	}
}

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	cfg := defaults(t)

	if cfg.Locale != "ko" {
		t.Errorf("locale = %q, want ko", cfg.Locale)
	}
	if cfg.Platform.Kind != "ip" || cfg.Platform.Consent != "prompt" {
		t.Errorf("platform = %+v", cfg.Platform)
	}
	if cfg.Platform.PollInterval != 30*time.Second {
		t.Errorf("poll interval = %v", cfg.Platform.PollInterval)
	}
	if cfg.API.Timeout != 10*time.Second || cfg.API.Radius != 1000 {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.History.Backend != "remote" {
		t.Errorf("history backend = %q", cfg.History.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadNonExistentWritesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed on non-existent config: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("expected config file to be auto-created: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("auto-created config is not valid JSON: %v", err)
	}
	if _, ok := raw["platform"]; !ok {
		t.Errorf("auto-created config missing platform section: %s", data)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("invalid json {{{"), 0600); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile should fail on invalid JSON")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
  "locale": "en",
  "platform": {"kind": "fixed", "latitude": 37.5665, "longitude": 126.978, "poll_interval": "5s"},
  "history": {"backend": "local", "data_dir": "~/hw"}
}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Locale != "en" || cfg.Platform.Kind != "fixed" || cfg.Platform.Latitude != 37.5665 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Platform.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %v", cfg.Platform.PollInterval)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.API.BaseURL)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HAZARDWATCH_API_TOKEN", "from-env")
	t.Setenv("HAZARDWATCH_HISTORY_BACKEND", "local")

	cfg := defaults(t)
	if cfg.API.Token != "from-env" {
		t.Errorf("token = %q, want from-env", cfg.API.Token)
	}
	if cfg.History.Backend != "local" {
		t.Errorf("backend = %q, want local", cfg.History.Backend)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := defaults(t)
	cfg.Platform.Kind = "nmea"
	cfg.Platform.Device = "/dev/ttyUSB0"
	cfg.API.Timeout = 3 * time.Second
	cfg.User.ID = "42"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.Platform.Kind != "nmea" || loaded.Platform.Device != "/dev/ttyUSB0" {
		t.Errorf("platform = %+v", loaded.Platform)
	}
	if loaded.API.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", loaded.API.Timeout)
	}
	if loaded.User.ID != "42" {
		t.Errorf("user id = %q", loaded.User.ID)
	}
}

func TestSaveToUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	cfg := defaults(t)
	if err := cfg.SaveTo(filepath.Join(blocker, "config.json")); err == nil {
		t.Error("Expected error when saving to unwritable directory")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad locale", func(c *Config) { c.Locale = "fr" }, "locale"},
		{"unknown platform", func(c *Config) { c.Platform.Kind = "gps" }, "unknown platform"},
		{"bad consent", func(c *Config) { c.Platform.Consent = "maybe" }, "consent"},
		{"nmea without device", func(c *Config) { c.Platform.Kind = "nmea" }, "device"},
		{"fixed out of range", func(c *Config) { c.Platform.Kind = "fixed"; c.Platform.Latitude = 95 }, "latitude"},
		{"short poll", func(c *Config) { c.Platform.PollInterval = time.Millisecond }, "poll_interval"},
		{"no base url", func(c *Config) { c.API.BaseURL = "" }, "base_url"},
		{"bad radius", func(c *Config) { c.API.Radius = 0 }, "radius"},
		{"unknown backend", func(c *Config) { c.History.Backend = "redis" }, "history backend"},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.ChatID = "1" }, "bot_token"},
		{"telegram without chat", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.BotToken = "t" }, "chat_id"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestDefaultDataDir(t *testing.T) {
	cfg := &Config{}
	dataDir := cfg.GetDataDir()
	if !filepath.IsAbs(dataDir) {
		t.Errorf("GetDataDir returned non-absolute path: %s", dataDir)
	}
	if filepath.Base(dataDir) != "hazardwatch" {
		t.Errorf("GetDataDir should end with 'hazardwatch', got %s", dataDir)
	}
}

func TestExplicitDataDir(t *testing.T) {
	cfg := &Config{History: HistoryConfig{DataDir: "/custom/data/path"}}
	if got := cfg.GetDataDir(); got != "/custom/data/path" {
		t.Errorf("expected '/custom/data/path', got %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot get home dir: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		result := ExpandPath(tt.input)
		if result != tt.expected {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestOpenPlatform(t *testing.T) {
	cfg := defaults(t)

	p, err := cfg.OpenPlatform()
	if err != nil {
		t.Fatalf("OpenPlatform(ip): %v", err)
	}
	if _, ok := p.(*platform.IPAPI); !ok {
		t.Errorf("ip platform = %T", p)
	}

	cfg.Platform.Kind = "nmea"
	cfg.Platform.Device = "/dev/ttyUSB0"
	if p, _ = cfg.OpenPlatform(); p == nil {
		t.Error("expected nmea platform")
	} else if _, ok := p.(*platform.NMEA); !ok {
		t.Errorf("nmea platform = %T", p)
	}

	cfg.Platform.Kind = "fixed"
	cfg.Platform.Latitude, cfg.Platform.Longitude = 37.5665, 126.978
	if p, _ = cfg.OpenPlatform(); p == nil {
		t.Error("expected fixed platform")
	} else if _, ok := p.(*platform.Fixed); !ok {
		t.Errorf("fixed platform = %T", p)
	}

	cfg.Platform.Kind = "none"
	p, err = cfg.OpenPlatform()
	if err != nil || p != nil {
		t.Errorf("none platform = %v, %v; want nil, nil", p, err)
	}

	cfg.Platform.Kind = "carrier-pigeon"
	if _, err := cfg.OpenPlatform(); err == nil {
		t.Error("expected error for unknown platform")
	}
}

func TestOpenHistory(t *testing.T) {
	cfg := defaults(t)

	h, db, err := cfg.OpenHistory()
	if err != nil {
		t.Fatalf("OpenHistory(remote): %v", err)
	}
	if _, ok := h.(*riskapi.Client); !ok || db != nil {
		t.Errorf("remote history = %T, store = %v", h, db)
	}

	tmpDir := t.TempDir()
	cfg.History.Backend = "local"
	cfg.History.DataDir = tmpDir
	h, db, err = cfg.OpenHistory()
	if err != nil {
		t.Fatalf("OpenHistory(local): %v", err)
	}
	defer db.Close()
	if _, ok := h.(*storage.SQLiteDB); !ok {
		t.Errorf("local history = %T", h)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "history.db")); err != nil {
		t.Errorf("expected database file in data dir: %v", err)
	}

	cfg.History.Backend = "redis"
	if _, _, err := cfg.OpenHistory(); err == nil || !strings.Contains(err.Error(), "unknown history backend") {
		t.Errorf("expected unknown backend error, got %v", err)
	}
}

func TestSessionUser(t *testing.T) {
	cfg := defaults(t)
	if cfg.SessionUser() != nil {
		t.Error("expected no user by default")
	}
	cfg.User.ID = "1"
	cfg.User.Username = "minji"
	u := cfg.SessionUser()
	if u == nil || u.ID != "1" || u.Username != "minji" {
		t.Errorf("user = %+v", u)
	}
}

func TestOpenNotifierTerminalOnly(t *testing.T) {
	cfg := defaults(t)

	n, flush, err := cfg.OpenNotifier(nil, nil)
	if err != nil {
		t.Fatalf("OpenNotifier: %v", err)
	}
	if _, ok := n.(*notify.Terminal); !ok {
		t.Errorf("notifier = %T, want terminal", n)
	}
	flush()
}

func TestOpenLogger(t *testing.T) {
	cfg := defaults(t)
	if _, err := cfg.OpenLogger(nil); err != nil {
		t.Errorf("OpenLogger: %v", err)
	}
	cfg.Logging.Format = "xml"
	if _, err := cfg.OpenLogger(nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
