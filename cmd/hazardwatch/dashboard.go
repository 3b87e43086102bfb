// ABOUTME: Dashboard command
// ABOUTME: Renders greeting, live risk, statistics and history as text, JSON or GeoJSON

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/geojson"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"d"},
	Short:   "Show the hazard dashboard",
	Long: `Show the dashboard: live risk at the current position, statistics,
recent searches and reports. Unavailable sections are reported as warnings.

Examples:
  hazardwatch dashboard
  hazardwatch dashboard --no-locate
  hazardwatch dashboard --json
  hazardwatch dashboard --geojson --output map.geojson`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noLocate, _ := cmd.Flags().GetBool("no-locate")
		asJSON, _ := cmd.Flags().GetBool("json")
		asGeoJSON, _ := cmd.Flags().GetBool("geojson")
		output, _ := cmd.Flags().GetString("output")
		if asJSON && asGeoJSON {
			return fmt.Errorf("--json and --geojson are mutually exclusive")
		}

		var pos *models.Position
		if !noLocate {
			session, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()
			if p, err := session.AcquireOnce(cmd.Context()); err == nil {
				pos = &p
			} else {
				logger.Debug("dashboard without position", "err", err)
			}
		}

		view, err := newService().Build(cmd.Context(), pos)
		if errors.Is(err, dashboard.ErrSessionLoading) {
			fmt.Fprintln(cmd.OutOrStdout(), "Loading...")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		var data []byte
		switch {
		case asJSON:
			data, err = json.MarshalIndent(view, "", "  ")
		case asGeoJSON:
			fc := geojson.ToPointsFeatureCollection(view.Searches)
			if view.Position != nil {
				var rec *models.RiskRecord
				if view.Current != nil {
					rec = &view.Current.Record
				}
				fc.AddCurrent(*view.Position, rec)
			}
			data, err = fc.ToJSONIndent()
		default:
			var tips []string
			if view.Position != nil {
				tips = dashboard.SafetyTips(cfg.Locale)
			}
			if output == "" {
				ui.RenderDashboard(cmd.OutOrStdout(), view, tips)
				return nil
			}
			f, err := os.Create(output) //nolint:gosec // user-chosen output path
			if err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			defer f.Close()
			ui.RenderDashboard(f, view, tips)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to encode dashboard: %w", err)
		}
		return writeOutput(cmd, output, data)
	},
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for data export files
		return fmt.Errorf("failed to write file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func init() {
	dashboardCmd.Flags().Bool("no-locate", false, "skip acquiring the current position")
	dashboardCmd.Flags().Bool("json", false, "print the dashboard as JSON")
	dashboardCmd.Flags().Bool("geojson", false, "print searches and live risk as GeoJSON")
	dashboardCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	rootCmd.AddCommand(dashboardCmd)
}
