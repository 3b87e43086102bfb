// ABOUTME: Root Cobra command and global flags
// ABOUTME: Loads configuration and wires logger, notifier and history for subcommands

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harper/hazardwatch/internal/config"
	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/notify"
	"github.com/harper/hazardwatch/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	cfg         *config.Config
	logger      *log.Logger
	notifier    notify.Notifier
	flushNotify func()

	// history is the configured dashboard history; localDB is set whenever
	// the local store has been opened, by the backend or by a local command.
	history dashboard.History
	localDB *storage.SQLiteDB
)

var rootCmd = &cobra.Command{
	Use:   "hazardwatch",
	Short: "Sinkhole risk around your location",
	Long: `
██╗  ██╗ █████╗ ███████╗ █████╗ ██████╗ ██████╗ ██╗    ██╗ █████╗ ████████╗ ██████╗██╗  ██╗
██║  ██║██╔══██╗╚══███╔╝██╔══██╗██╔══██╗██╔══██╗██║    ██║██╔══██╗╚══██╔══╝██╔════╝██║  ██║
███████║███████║  ███╔╝ ███████║██████╔╝██║  ██║██║ █╗ ██║███████║   ██║   ██║     ███████║
██╔══██║██╔══██║ ███╔╝  ██╔══██║██╔══██╗██║  ██║██║███╗██║██╔══██║   ██║   ██║     ██╔══██║
██║  ██║██║  ██║███████╗██║  ██║██║  ██║██████╔╝╚███╔███╔╝██║  ██║   ██║   ╚██████╗██║  ██║
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝  ╚══╝╚══╝ ╚═╝  ╚═╝   ╚═╝    ╚═════╝╚═╝  ╚═╝

         Know the ground beneath your feet

Examples:
  hazardwatch locate
  hazardwatch risk 37.5665 126.9780
  hazardwatch dashboard
  hazardwatch watch --risk
  hazardwatch history export --format markdown`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(config.ExpandPath(cfgFile))
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = cfg.OpenLogger(cmd.ErrOrStderr())
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		notifier, flushNotify, err = cfg.OpenNotifier(cmd.ErrOrStderr(), logger)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}

		history, localDB, err = cfg.OpenHistory()
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

func closeAll() error {
	if flushNotify != nil {
		flushNotify()
		flushNotify = nil
	}
	history = nil
	if localDB != nil {
		err := localDB.Close()
		localDB = nil
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/hazardwatch/config.json)")
}

// openLocal returns the local history store, opening it if the configured
// backend is remote.
func openLocal() (*storage.SQLiteDB, error) {
	if localDB != nil {
		return localDB, nil
	}
	db, err := cfg.OpenLocalHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to open local history: %w", err)
	}
	localDB = db
	return db, nil
}

// newService builds the dashboard service. Lookups are recorded in the
// local store when it is open.
func newService() *dashboard.Service {
	opts := []dashboard.Option{dashboard.WithLogger(logger)}
	if localDB != nil {
		opts = append(opts, dashboard.WithRecorder(localDB))
	}
	return dashboard.NewService(
		dashboard.NewStaticSession(cfg.SessionUser()),
		cfg.OpenRiskClient(),
		history,
		opts...,
	)
}

// openSession opens a location session over the configured platform.
func openSession(ctx context.Context) (*location.Session, error) {
	plat, err := cfg.OpenPlatform()
	if err != nil {
		return nil, fmt.Errorf("failed to open platform: %w", err)
	}
	return location.Open(ctx, plat,
		location.WithNotifier(notifier),
		location.WithLocale(cfg.Locale),
		location.WithLogger(logger),
	), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeAll()
		os.Exit(1)
	}
}
