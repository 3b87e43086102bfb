// ABOUTME: Watch command
// ABOUTME: Streams position fixes, optionally with the live risk at each one

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harper/hazardwatch/internal/location"
	"github.com/harper/hazardwatch/internal/models"
	"github.com/harper/hazardwatch/internal/ui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Track the position continuously",
	Long: `Track the position until interrupted. Stream errors are logged and
tracking continues.

Examples:
  hazardwatch watch
  hazardwatch watch --risk
  hazardwatch watch --count 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withRisk, _ := cmd.Flags().GetBool("risk")
		count, _ := cmd.Flags().GetInt("count")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		service := newService()
		fixes := make(chan models.Position, 1)
		sub := session.Watch(func(pos models.Position) {
			select {
			case fixes <- pos:
			default:
				// The printer is behind; the store already holds the newest fix.
			}
		})
		if sub == nil {
			return fmt.Errorf("watch: %w", location.ErrUnsupported)
		}
		defer sub.Cancel()

		out := cmd.OutOrStdout()
		for seen := 0; count <= 0 || seen < count; seen++ {
			select {
			case <-ctx.Done():
				fmt.Fprintln(out)
				return nil
			case pos := <-fixes:
				line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), ui.FormatPosition(&pos))
				if withRisk {
					current, err := service.CurrentRisk(ctx, pos)
					if err != nil {
						logger.Warn("current risk unavailable", "err", err)
					} else {
						line += "  " + ui.FormatRiskValue(current.Record.Probability)
					}
				}
				fmt.Fprintln(out, line)
			}
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Bool("risk", false, "query the risk at every fix")
	watchCmd.Flags().IntP("count", "n", 0, "stop after this many fixes (0 = until interrupted)")

	rootCmd.AddCommand(watchCmd)
}
