package main

import (
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	wodmcp "github.com/claude/wodgen/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workout tools over MCP stdio",
	Long: `Starts an MCP server on stdin/stdout for desktop assistants.

Locally the tools run the configured provider. With --server they call a
wodgen server instead, so no model API key is needed on this machine.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var src wodmcp.WorkoutSource
		if remote() {
			src = newClient()
			log.Info("mcp remote mode", "server", serverURL)
		} else {
			p, err := newPipeline(cmd.Context(), nil)
			if err != nil {
				return err
			}
			src = p
		}
		return mcpserver.ServeStdio(wodmcp.New(src, Version, log))
	},
}
