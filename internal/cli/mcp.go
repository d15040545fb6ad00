package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	pngmcp "github.com/pngstash/pngstash/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the pngstash MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pngstash MCP server on stdio",
	Long: `Start the pngstash MCP server on stdio transport.

The server exposes pngstash functionality as MCP tools that AI coding
assistants can call: inspect_png, decode_message, encode_message,
remove_chunk, verify_png, get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Codec == nil {
			return fmt.Errorf("services not initialized")
		}

		srv := pngmcp.NewServer(pngmcp.Services{
			Codec:       Codec,
			Inspector:   Inspector,
			Verifier:    Verifier,
			Store:       Store,
			EventLog:    EventLog,
			MetricsCalc: MetricsCalc,
		}, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
