package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/semiconip/patentspike/core"
	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/prompt"
	"github.com/semiconip/patentspike/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// configFor clones the base config and applies the common tool arguments.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if names := contract.SplitList(request.GetString("companies", "")); len(names) > 0 {
		cfg.Companies = contract.ResolveCompanies(names)
	}
	if p := request.GetInt("period", 0); p != 0 {
		if err := contract.ValidatePeriod(p); err != nil {
			return nil, err
		}
		cfg.PeriodMonths = p
	}
	if th := request.GetFloat("threshold", 0); th != 0 {
		if err := contract.ValidateThreshold(th); err != nil {
			return nil, err
		}
		cfg.ThresholdPct = th
	}
	cfg.NewActivityTier = request.GetBool("new_activity", cfg.NewActivityTier)
	if in := request.GetString("input", ""); in != "" {
		cfg.InputFile = in
	}
	if len(cfg.Companies) == 0 {
		return nil, fmt.Errorf("no companies selected")
	}
	return cfg, nil
}

// analyze runs the analysis for a tool call with the run header suppressed.
func (h *toolHandler) analyze(ctx context.Context, request mcp.CallToolRequest) (schema.AnalysisReport, *mcp.CallToolResult) {
	cfg, err := h.configFor(request)
	if err != nil {
		return schema.AnalysisReport{}, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	report, err := core.GetAnalysisReport(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return schema.AnalysisReport{}, mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
	return report, nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDetectSpikes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	actionableOnly := request.GetBool("actionable_only", false)
	spikes := []schema.EnrichedSpikeAlert{}
	for _, r := range report.Companies {
		alerts := r.Spikes
		if actionableOnly {
			alerts = schema.ActionableSpikes(alerts)
		}
		spikes = append(spikes, schema.EnrichSpikes(r.Company, alerts)...)
	}
	return jsonResult(spikes)
}

func (h *toolHandler) handleGetPeriodBuckets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	buckets := make(map[string]map[string]int, len(report.Companies))
	for _, r := range report.Companies {
		buckets[r.Company] = r.Buckets
	}
	return jsonResult(buckets)
}

func (h *toolHandler) handleGetCompanyReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	company, err := request.RequireString("company")
	if err != nil || company == "" {
		return mcp.NewToolResultError("company is required"), nil
	}
	request.Params.Arguments = withArgument(request.GetArguments(), "companies", company)
	report, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(report.Companies[0])
}

func (h *toolHandler) handleGetIPCTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	trees := make(map[string]schema.IPCTree, len(report.Companies))
	for _, r := range report.Companies {
		trees[r.Company] = r.IPCTree
	}
	return jsonResult(trees)
}

func (h *toolHandler) handleClassifyIPC(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("code is required"), nil
	}
	return jsonResult(algo.ClassifyIPC(code))
}

func (h *toolHandler) handleClassifyTech(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required"), nil
	}
	category := algo.ClassifyTech(title, request.GetString("abstract", ""))
	return jsonResult(map[string]any{
		"category":   category,
		"is_tracked": algo.IsTechCategory(category),
	})
}

func (h *toolHandler) handleBuildAgentPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	text, err := prompt.Build(report, report.GeneratedAt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build prompt: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// withArgument returns a copy of args with key set.
func withArgument(args map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	out[key] = value
	return out
}
