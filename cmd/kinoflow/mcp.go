package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinoflow/kinoflow"
	"github.com/kinoflow/kinoflow/internal/logging"
	"github.com/kinoflow/kinoflow/pkg/adapters/file"
	mcpAdapter "github.com/kinoflow/kinoflow/pkg/adapters/mcp"
	"github.com/kinoflow/kinoflow/pkg/adapters/memory"
	"github.com/kinoflow/kinoflow/pkg/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp <graph.json>",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves a conversation graph over MCP (stdio transport), so AI agents
can play the conversation through tool calls: start_conversation,
submit_answer and inspect_graph.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		g, err := file.LoadPath(args[0])
		if err != nil {
			log.Fatalf("Error loading graph: %v", err)
		}

		// Logs go to stderr so they don't corrupt JSON-RPC on stdout.
		logger := logging.New(slog.LevelInfo)
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		sessions := session.NewManager(memory.NewStore(), session.WithLogger(logger))
		srv := mcpAdapter.NewServer(g, sessions, kinoflow.Version)

		slog.Info("starting kinoflow MCP server (stdio)", "graph", g.ID)
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP server execution failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
