// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/semiconip/patentspike/internal/contract"
)

// Shared argument descriptions.
const (
	companiesDesc = "Comma-separated company names, e.g. '삼성전자,SK하이닉스'. Defaults to the configured companies."
	inputDesc     = "Path to a local JSON file of patent records used instead of KIPRIS."
)

// NewMCPServer initializes and configures the patentspike MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Patent Spike Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: detect_spikes ---
	s.AddTool(mcp.NewTool("detect_spikes",
		mcp.WithDescription("Detect technology categories whose publications in the last month surged against the previous 11-month average."),
		mcp.WithString("companies", mcp.Description(companiesDesc)),
		mcp.WithNumber("threshold", mcp.Description("Strategic Spike cutoff in percent, between 100 and 500. Defaults to 200.")),
		mcp.WithBoolean("new_activity", mcp.Description("Report categories without history as New Activity.")),
		mcp.WithBoolean("actionable_only", mcp.Description("Only return Strategic Spike and Emerging Signal alerts.")),
		mcp.WithString("input", mcp.Description(inputDesc)),
	), h.handleDetectSpikes)

	// --- 2. Tool: get_period_buckets ---
	s.AddTool(mcp.NewTool("get_period_buckets",
		mcp.WithDescription("Count publications in the 1, 3, 6 and 12 month windows per company."),
		mcp.WithString("companies", mcp.Description(companiesDesc)),
		mcp.WithString("input", mcp.Description(inputDesc)),
	), h.handleGetPeriodBuckets)

	// --- 3. Tool: get_company_report ---
	s.AddTool(mcp.NewTool("get_company_report",
		mcp.WithDescription("Full report of one company: buckets, spikes, distributions, IPC tree and sample patents."),
		mcp.WithString("company", mcp.Description("Company display or English name."), mcp.Required()),
		mcp.WithNumber("period", mcp.Description("Analysis period in months (1, 3, 6, 12).")),
		mcp.WithString("input", mcp.Description(inputDesc)),
	), h.handleGetCompanyReport)

	// --- 4. Tool: get_ipc_tree ---
	s.AddTool(mcp.NewTool("get_ipc_tree",
		mcp.WithDescription("IPC hierarchy counts (level1 > level2 > level3) per company for the period."),
		mcp.WithString("companies", mcp.Description(companiesDesc)),
		mcp.WithNumber("period", mcp.Description("Analysis period in months (1, 3, 6, 12).")),
		mcp.WithString("input", mcp.Description(inputDesc)),
	), h.handleGetIPCTree)

	// --- 5. Tool: classify_ipc ---
	s.AddTool(mcp.NewTool("classify_ipc",
		mcp.WithDescription("Map an IPC code such as 'H01L21/306' to its three-level technology hierarchy."),
		mcp.WithString("code", mcp.Description("IPC code, semicolon-delimited lists use the first code."), mcp.Required()),
	), h.handleClassifyIPC)

	// --- 6. Tool: classify_tech ---
	s.AddTool(mcp.NewTool("classify_tech",
		mcp.WithDescription("Assign a patent title and abstract to a semiconductor technology category."),
		mcp.WithString("title", mcp.Description("Invention title."), mcp.Required()),
		mcp.WithString("abstract", mcp.Description("Abstract text.")),
	), h.handleClassifyTech)

	// --- 7. Tool: build_agent_prompt ---
	s.AddTool(mcp.NewTool("build_agent_prompt",
		mcp.WithDescription("Run spike detection and build the analyst agent prompt."),
		mcp.WithString("companies", mcp.Description(companiesDesc)),
		mcp.WithNumber("period", mcp.Description("Analysis period in months (1, 3, 6, 12).")),
		mcp.WithNumber("threshold", mcp.Description("Strategic Spike cutoff in percent.")),
		mcp.WithString("input", mcp.Description(inputDesc)),
	), h.handleBuildAgentPrompt)

	return s
}

// StartMCPServer starts the patentspike MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
