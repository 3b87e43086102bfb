// ABOUTME: MCP serve command
// ABOUTME: Starts the MCP server for AI agent integration

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/hazardwatch/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer session.Close()

		var locator mcp.Locator
		if cfg.Platform.Kind != "none" {
			locator = session
		}

		server, err := mcp.NewServer(newService(), locator, cfg.Locale)
		if err != nil {
			return err
		}
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
