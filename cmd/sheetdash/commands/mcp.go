package commands

import (
	"github.com/spf13/cobra"

	"sheetdash/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		return mcp.NewServer(a.service, Version, cfg.EnableMermaidCharts).Start(cmd.Context())
	},
}
