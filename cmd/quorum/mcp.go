package main

import (
	"github.com/spf13/cobra"

	"github.com/quorumlabs/quorum/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the engine as an MCP server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// MCP owns stdout; logging must stay on stderr, which the default
		// logger already does.
		logger := newLogger(cmd)

		client, err := buildClient(cmd, cfg, logger)
		if err != nil {
			return err
		}
		return mcp.NewServer(client).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
