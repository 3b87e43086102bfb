// ABOUTME: Report commands
// ABOUTME: Adds, reviews and lists image-analysis reports in local history

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/storage"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage image-analysis reports",
}

var reportAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a pending report",
	Long: `Add a report in the pending state.

Examples:
  hazardwatch report add --confidence 0.82`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var confidence *float64
		if cmd.Flags().Changed("confidence") {
			v, _ := cmd.Flags().GetFloat64("confidence")
			confidence = &v
		}
		if err := models.ValidateProbability("confidence", confidence); err != nil {
			return err
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		report := models.NewReport(confidence)
		if err := db.CreateReport(report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Added report %s\n", color.GreenString("✓"), report.ID)
		return nil
	},
}

var reportStatusCmd = &cobra.Command{
	Use:   "status <id> <pending|verified|false_positive>",
	Short: "Set the review status of a report",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := models.ParseReportStatus(args[1])
		if err != nil {
			return err
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		id := models.ID(args[0])
		if err := db.UpdateReportStatus(id, status); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("report '%s' not found", id)
			}
			return fmt.Errorf("failed to update report: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Report %s is now %s\n",
			color.GreenString("✓"), id.Short(), ui.FormatStatus(status))
		return nil
	},
}

var reportListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openLocal()
		if err != nil {
			return err
		}
		reports, err := db.RecentReports(limit)
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No reports yet. Use 'hazardwatch report add' to add one.")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatReport(r))
		}
		return nil
	},
}

func init() {
	reportAddCmd.Flags().Float64("confidence", 0, "analysis confidence (0..1); omitted means unknown")
	reportListCmd.Flags().IntP("limit", "n", 0, "maximum reports to show (0 = all)")

	reportCmd.AddCommand(reportAddCmd)
	reportCmd.AddCommand(reportStatusCmd)
	reportCmd.AddCommand(reportListCmd)
	rootCmd.AddCommand(reportCmd)
}
