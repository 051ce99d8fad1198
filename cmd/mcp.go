package cmd

import (
	"github.com/semiconip/patentspike/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the patentspike MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents run spike detection,
period buckets, company reports and IPC or technology classification as tools.

Tool arguments override the configured companies, period, threshold and input file
per call.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
