package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/priorityx/priorityx/core"
	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
}

// applyCommonArgs overlays shared request arguments on a config clone.
func (h *toolHandler) applyCommonArgs(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input", ""); p != "" {
		cfg.InputPath = p
	}
	if g := request.GetString("granularity", ""); g != "" {
		cfg.Granularity = schema.Granularity(g)
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	return cfg
}

func (h *toolHandler) handleGetPriorityMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommonArgs(request)

	ranked, err := core.GetMatrixResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("matrix analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(ranked, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetMovement(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommonArgs(request)
	cfg.Cumulative = request.GetBool("cumulative", cfg.Cumulative)

	records, meta, err := core.GetMovementResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("movement tracking failed: %v", err)), nil
	}

	payload := struct {
		Records []schema.MovementRecord `json:"records"`
		Meta    *schema.RunMeta         `json:"meta"`
	}{Records: records, Meta: meta}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetTransitions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommonArgs(request)
	cfg.RiskIncreasing = request.GetBool("risk_increasing", cfg.RiskIncreasing)

	transitions, meta, err := core.GetTransitionResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("transition extraction failed: %v", err)), nil
	}

	payload := struct {
		Transitions []schema.TransitionRecord `json:"transitions"`
		Meta        *schema.RunMeta           `json:"meta"`
	}{Transitions: transitions, Meta: meta}
	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeDrivers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.applyCommonArgs(request)
	cfg.Entity = request.GetString("entity", "")
	cfg.PeriodFrom = schema.Period(request.GetString("from", ""))
	cfg.PeriodTo = schema.Period(request.GetString("to", ""))
	if cols := request.GetString("subcategory_cols", ""); cols != "" {
		cfg.SubcategoryCols = contract.ParseColumnList(cols)
	}
	if n := request.GetInt("top_n", 0); n > 0 {
		cfg.TopN = n
	}

	analysis, err := core.GetDriverResults(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("driver analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
