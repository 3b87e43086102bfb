// ABOUTME: Search history commands
// ABOUTME: Records and lists risk lookups in the local history store

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/dashboard"
	"github.com/harper/hazardwatch/internal/geojson"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/risk"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search",
	Aliases: []string{"s"},
	Short:   "Manage the local search history",
}

var searchRecordCmd = &cobra.Command{
	Use:   "record <latitude> <longitude>",
	Short: "Record a search without querying the risk service",
	Long: `Record a search in the local history.

Examples:
  hazardwatch search record 37.5665 126.9780
  hazardwatch search record 37.5665 126.9780 --risk 0.35`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parseCoordinates(args)
		if err != nil {
			return err
		}

		var p *float64
		if cmd.Flags().Changed("risk") {
			v, _ := cmd.Flags().GetFloat64("risk")
			p = &v
		}
		if err := models.ValidateProbability("risk", p); err != nil {
			return err
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		entry := models.NewSearchEntry(pos.Latitude, pos.Longitude, p)
		if err := db.RecordSearch(entry); err != nil {
			return fmt.Errorf("failed to record search: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Recorded search %s\n",
			color.GreenString("✓"), color.New(color.Faint).Sprint(entry.ID.Short()))
		return nil
	},
}

var searchListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recorded searches, newest first",
	Long: `List recorded searches, newest first.

Examples:
  hazardwatch search list
  hazardwatch search list --limit 20
  hazardwatch search list --geojson --geometry line --output trail.geojson`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asGeoJSON, _ := cmd.Flags().GetBool("geojson")
		geometry, _ := cmd.Flags().GetString("geometry")
		output, _ := cmd.Flags().GetString("output")
		if geometry != "points" && geometry != "line" {
			return fmt.Errorf("unsupported geometry: %s (use 'points' or 'line')", geometry)
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		searches, err := db.RecentSearches(limit)
		if err != nil {
			return fmt.Errorf("failed to list searches: %w", err)
		}

		if asGeoJSON {
			var fc *geojson.FeatureCollection
			if geometry == "line" {
				fc = geojson.ToLineFeatureCollection(searches)
			} else {
				fc = geojson.ToPointsFeatureCollection(searches)
			}
			data, err := fc.ToJSONIndent()
			if err != nil {
				return fmt.Errorf("failed to generate GeoJSON: %w", err)
			}
			return writeOutput(cmd, output, data)
		}

		if len(searches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No searches yet. Use 'hazardwatch risk' to look one up.")
			return nil
		}
		for _, e := range searches {
			p := risk.Value(e.RiskProbability)
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSearchRow(dashboard.Row{
				Entry:          e,
				Classification: risk.Classify(p),
				Percent:        risk.Percent(p),
			}))
		}
		return nil
	},
}

func init() {
	searchRecordCmd.Flags().Float64("risk", 0, "risk probability (0..1); omitted means unknown")

	searchListCmd.Flags().IntP("limit", "n", 0, "maximum searches to show (0 = all)")
	searchListCmd.Flags().Bool("geojson", false, "print as GeoJSON")
	searchListCmd.Flags().String("geometry", "points", "GeoJSON geometry: points or line")
	searchListCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	searchCmd.AddCommand(searchRecordCmd)
	searchCmd.AddCommand(searchListCmd)
	rootCmd.AddCommand(searchCmd)
}
