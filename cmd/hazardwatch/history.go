// ABOUTME: History backup, restore and sync commands
// ABOUTME: Exports YAML or markdown, imports YAML backups, pulls remote history

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Back up, restore and sync the local history",
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local history as YAML or markdown",
	Long: `Export all searches and reports from the local history.

The YAML format is a backup that 'hazardwatch history import' restores.

Examples:
  hazardwatch history export --output history.yaml
  hazardwatch history export --format markdown`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		db, err := openLocal()
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "yaml":
			data, err = storage.ExportToYAML(db)
		case "markdown":
			data, err = storage.ExportToMarkdown(db)
		default:
			return fmt.Errorf("unsupported format: %s (use 'yaml' or 'markdown')", format)
		}
		if err != nil {
			return fmt.Errorf("failed to export history: %w", err)
		}

		if output == "" {
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Backup created: %s", output))
		return nil
	},
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a YAML history backup",
	Long: `Import searches and reports from a YAML backup.

WARNING: This adds to existing history, it does not replace it. Entries
whose ID already exists fail the import, and a failed import adds nothing.

Examples:
  hazardwatch history import history.yaml --confirm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		yes, _ := cmd.Flags().GetBool("confirm")
		if !yes && !confirm(cmd, fmt.Sprintf("Import history from '%s'?", filename)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		if err := storage.ImportFromYAML(db, data); err != nil {
			return fmt.Errorf("failed to import: %w", err)
		}

		searches, _ := db.RecentSearches(0)
		reports, _ := db.RecentReports(0)
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Import complete"))
		fmt.Fprintf(cmd.OutOrStdout(), "  %d searches, %d reports in history\n", len(searches), len(reports))
		return nil
	},
}

var historyPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy the remote dashboard history into local history",
	Long: `Copy the searches and reports the risk service holds for the configured
user into the local history. Entries already present are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openLocal()
		if err != nil {
			return err
		}

		start := time.Now()
		summary, err := storage.MigrateData(cmd.Context(), cfg.OpenRiskClient(), db, models.ID(cfg.User.ID))
		if err != nil {
			return fmt.Errorf("failed to pull history: %w", err)
		}
		logger.Debug("history pulled", "took", time.Since(start))

		fmt.Fprintf(cmd.OutOrStdout(), "%s Pulled %d searches, %d reports (%d already present)\n",
			color.GreenString("✓"), summary.Searches, summary.Reports, summary.Skipped)
		return nil
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local history",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("confirm")
		if !yes && !confirm(cmd, "Delete all local searches and reports?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
			return nil
		}

		db, err := openLocal()
		if err != nil {
			return err
		}
		if err := db.Reset(); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("History cleared"))
		return nil
	},
}

func init() {
	historyExportCmd.Flags().StringP("format", "f", "yaml", "output format: yaml or markdown")
	historyExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	historyImportCmd.Flags().Bool("confirm", false, "skip confirmation prompt")
	historyResetCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyPullCmd)
	historyCmd.AddCommand(historyResetCmd)
	rootCmd.AddCommand(historyCmd)
}
