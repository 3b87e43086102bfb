// ABOUTME: Component factories driven by configuration
// ABOUTME: Builds the platform, risk client, history source, notifier and logger

package config

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/logging"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/notify"
	"github.com/harper/hazardwatch/internal/platform"
	"github.com/harper/hazardwatch/internal/riskapi"
	"github.com/harper/hazardwatch/internal/storage"
)

// OpenPlatform creates the configured position platform. The "none" kind
// returns a nil platform, which the location layer treats as unsupported.
func (c *Config) OpenPlatform() (location.Platform, error) {
	switch c.Platform.Kind {
	case "ip":
		consent, err := models.ParsePermissionState(c.Platform.Consent)
		if err != nil {
			return nil, fmt.Errorf("platform.consent: %w", err)
		}
		client := &http.Client{Timeout: location.OnceOptions.Timeout}
		return platform.NewIPAPI(c.Platform.IPAPIURL, consent, c.Platform.PollInterval, client), nil
	case "nmea":
		return platform.NewNMEA(c.Platform.Device, c.Platform.BaudRate), nil
	case "fixed":
		fix := models.Position{
			Latitude:  c.Platform.Latitude,
			Longitude: c.Platform.Longitude,
			Accuracy:  c.Platform.Accuracy,
		}
		if err := fix.Validate(); err != nil {
			return nil, fmt.Errorf("platform position: %w", err)
		}
		return platform.NewFixed(fix, c.Platform.PollInterval), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown platform: %q", c.Platform.Kind)
	}
}

// OpenRiskClient creates the risk service client.
func (c *Config) OpenRiskClient() *riskapi.Client {
	return riskapi.NewClient(c.API.BaseURL, c.API.Token, c.API.Timeout).WithRadius(c.API.Radius)
}

// OpenLocalHistory opens the SQLite history store in the data directory.
func (c *Config) OpenLocalHistory() (*storage.SQLiteDB, error) {
	db, err := storage.NewSQLiteDB(filepath.Join(c.GetDataDir(), "history.db"))
	if err != nil {
		return nil, err
	}
	if c.User.ID != "" {
		db.SetUser(models.ID(c.User.ID))
	}
	return db, nil
}

// OpenHistory creates the configured history source. For the local backend
// the store is also returned so lookups can be recorded; it is nil otherwise.
func (c *Config) OpenHistory() (dashboard.History, *storage.SQLiteDB, error) {
	switch c.History.Backend {
	case "remote":
		return c.OpenRiskClient(), nil, nil
	case "local":
		db, err := c.OpenLocalHistory()
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend: %q", c.History.Backend)
	}
}

// SessionUser returns the configured account, or nil when none is set.
func (c *Config) SessionUser() *models.User {
	if c.User.ID == "" && c.User.Username == "" {
		return nil
	}
	return &models.User{
		ID:       models.ID(c.User.ID),
		Username: c.User.Username,
		FullName: c.User.FullName,
	}
}

// OpenLogger creates the configured logger writing to w.
func (c *Config) OpenLogger(w io.Writer) (*log.Logger, error) {
	return logging.New(w, c.Logging.Level, c.Logging.Format)
}

// OpenNotifier creates the terminal notifier plus Telegram when enabled. The
// returned flush waits for pending background deliveries.
func (c *Config) OpenNotifier(w io.Writer, logger *log.Logger) (notify.Notifier, func(), error) {
	term := notify.NewTerminal(w)
	if !c.Telegram.Enabled {
		return term, func() {}, nil
	}
	tg, err := notify.NewTelegram(notify.TelegramOptions{
		BotToken: c.Telegram.BotToken,
		ChatID:   c.Telegram.ChatID,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("telegram: %w", err)
	}
	return notify.Multi{term, tg}, tg.Flush, nil
}
