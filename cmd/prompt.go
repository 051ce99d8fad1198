package cmd

import (
	"github.com/semiconip/patentspike/core"
	"github.com/spf13/cobra"
)

// promptCmd prints the agent prompt for the current analysis.
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Generate an IP strategy agent prompt from the current spikes.",
	Long: `Run spike detection and render a prompt for an IP strategy agent, listing the
companies, period, analysis steps and every Strategic Spike or Emerging Signal.

Examples:
  patentspike prompt --companies 삼성전자,SK하이닉스 --output-file prompt.txt`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecutePrompt, "Cannot build prompt"),
}

// agentConfigCmd prints the agent configuration document.
var agentConfigCmd = &cobra.Command{
	Use:   "agent-config",
	Short: "Print the IP strategy agent configuration as YAML or JSON.",
	Long: `Render the agent configuration: persona, skills, the active threshold and tier
colors, and the sync collections the agent reads.

YAML by default; --output json switches to JSON.

Examples:
  patentspike agent-config --output-file agent.yaml
  patentspike agent-config --threshold 250 --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteAgentConfig, "Cannot build agent config"),
}
