// ABOUTME: Locate command
// ABOUTME: Acquires one position fix and shows the permission state

package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:     "locate",
	Aliases: []string{"l"},
	Short:   "Get the current position once",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer session.Close()

		pos, err := session.AcquireOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("locate: %w", err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := json.MarshalIndent(pos, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓"), ui.FormatPosition(&pos))
		fmt.Fprintf(cmd.OutOrStdout(), "  permission: %s\n", ui.FormatPermission(session.Permission()))
		return nil
	},
}

func init() {
	locateCmd.Flags().Bool("json", false, "print the fix as JSON")

	rootCmd.AddCommand(locateCmd)
}
