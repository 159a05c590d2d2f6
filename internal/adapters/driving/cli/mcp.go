package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rfqx/internal/adapters/driving/mcp"
	"github.com/custodia-labs/rfqx/internal/core/services"
)

// Port range searched by --http when no port is given.
const (
	mcpPortStart = 8765
	mcpPortEnd   = 8865
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can extract
line items and read stored results.

By default, the server communicates over stdio using JSON-RPC.

Use --port or --http to start a streamable HTTP server instead.

Examples:
  # Stdio mode (default)
  rfqx mcp serve

  # HTTP mode on a fixed port
  rfqx mcp serve --port 8080

  # HTTP mode on the first free port from 8765
  rfqx mcp serve --http

Assistant configuration:
  {
    "mcpServers": {
      "rfqx": {
        "command": "/path/to/rfqx",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("http", false, "serve HTTP on the first free port")
	mcpServeCmd.Flags().Bool("no-store", false, "do not persist results")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return fmt.Errorf("settings service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, _ := cmd.Flags().GetBool("http")
	noStore, _ := cmd.Flags().GetBool("no-store")

	if useHTTP && port == 0 {
		port, err = services.FindAvailablePort(mcpPortStart, mcpPortEnd)
		if err != nil {
			return err
		}
	}

	cfg, err := extractionConfig(cmd)
	if err != nil {
		return err
	}
	docs, cleanup, err := openDocuments(runOptions{cfg: cfg, noStore: noStore})
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := mcp.NewServer(&mcp.Ports{
		Documents: docs,
		Threshold: cfg.Threshold,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf("localhost:%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
