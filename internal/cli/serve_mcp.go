package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/mcpserver"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the find_duplicates tool over the Model Context Protocol",
	Long: `Starts an MCP server over stdio exposing a single tool, find_duplicates,
which runs the same scan pipeline as the root command and returns the
duplicate and hard-link reports as structured JSON.

Intended for use as a subprocess launched by an MCP client, not for
interactive use.`,
	RunE: runServeMCP,
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	logger := slog.Default().With("component", "cli")
	server := mcpserver.New(logger)
	return mcpserver.Serve(cmd.Context(), server)
}
