// ABOUTME: Risk and classify commands
// ABOUTME: Queries the live risk at a coordinate and classifies probabilities

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

// parseCoordinates reads "<lat> <lng>" arguments.
func parseCoordinates(args []string) (models.Position, error) {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return models.Position{}, fmt.Errorf("invalid latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return models.Position{}, fmt.Errorf("invalid longitude: %w", err)
	}
	pos := models.Position{Latitude: lat, Longitude: lng}
	if err := pos.Validate(); err != nil {
		return models.Position{}, err
	}
	return pos, nil
}

var riskCmd = &cobra.Command{
	Use:     "risk [latitude longitude]",
	Aliases: []string{"r"},
	Short:   "Get the sinkhole risk at a coordinate or the current position",
	Long: `Query the risk service at a coordinate. Without arguments the current
position is acquired first. Lookups are recorded when local history is active.

Examples:
  hazardwatch risk
  hazardwatch risk 37.5665 126.9780
  hazardwatch risk 37.5665 126.9780 --json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or <latitude> <longitude>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var pos models.Position
		if len(args) == 2 {
			p, err := parseCoordinates(args)
			if err != nil {
				return err
			}
			pos = p
		} else {
			session, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()
			p, err := session.AcquireOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("locate: %w", err)
			}
			pos = p
		}

		current, err := newService().CurrentRisk(cmd.Context(), pos)
		if err != nil {
			return fmt.Errorf("failed to query risk: %w", err)
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := json.MarshalIndent(current, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", ui.FormatPosition(&pos), ui.FormatCurrentRisk(current))
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <probability>",
	Short: "Classify a risk probability as low, medium or high",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid probability: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatRiskValue(p))
		return nil
	},
}

func init() {
	riskCmd.Flags().Bool("json", false, "print the classified risk as JSON")

	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(classifyCmd)
}
