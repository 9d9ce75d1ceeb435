// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/priorityx/priorityx/internal/contract"
)

// NewMCPServer initializes and configures the priorityx MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"Priorityx Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
	}

	// --- 1. Tool: get_priority_matrix ---
	s.AddTool(mcp.NewTool("get_priority_matrix",
		mcp.WithDescription("Classify entities into priority quadrants over the configured window."),
		mcp.WithString("input", mcp.Description("Path to the events file (.csv or .parquet). Defaults to the configured input.")),
		mcp.WithString("granularity", mcp.Description("Period granularity. Defaults to the configured value."), mcp.Enum("yearly", "semiannual", "quarterly", "monthly")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetPriorityMatrix)

	// --- 2. Tool: get_movement ---
	s.AddTool(mcp.NewTool("get_movement",
		mcp.WithDescription("Track per-entity quadrant trajectories across periods."),
		mcp.WithString("input", mcp.Description("Path to the events file (.csv or .parquet).")),
		mcp.WithString("granularity", mcp.Description("Period granularity."), mcp.Enum("yearly", "semiannual", "quarterly", "monthly")),
		mcp.WithBoolean("cumulative", mcp.Description("Accumulate events to each period's end instead of windowing.")),
	), h.handleGetMovement)

	// --- 3. Tool: get_transitions ---
	s.AddTool(mcp.NewTool("get_transitions",
		mcp.WithDescription("Extract quadrant transitions with priority tiers and spike markers."),
		mcp.WithString("input", mcp.Description("Path to the events file (.csv or .parquet).")),
		mcp.WithString("granularity", mcp.Description("Period granularity."), mcp.Enum("yearly", "semiannual", "quarterly", "monthly")),
		mcp.WithBoolean("risk_increasing", mcp.Description("Keep only transitions toward a riskier quadrant.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetTransitions)

	// --- 4. Tool: analyze_drivers ---
	s.AddTool(mcp.NewTool("analyze_drivers",
		mcp.WithDescription("Attribute one entity's quadrant transition to categorical and numeric drivers."),
		mcp.WithString("entity", mcp.Description("Entity whose transition to explain."), mcp.Required()),
		mcp.WithString("from", mcp.Description("Earlier period of the transition (e.g. 2024-Q2)."), mcp.Required()),
		mcp.WithString("to", mcp.Description("Later period of the transition (e.g. 2024-Q3)."), mcp.Required()),
		mcp.WithString("input", mcp.Description("Path to the events file (.csv or .parquet).")),
		mcp.WithString("subcategory_cols", mcp.Description("Comma-separated categorical columns. Empty auto-detects.")),
		mcp.WithNumber("top_n", mcp.Description("Maximum drivers per column.")),
	), h.handleAnalyzeDrivers)

	return s
}

// StartMCPServer starts the priorityx MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg)
	return server.ServeStdio(s)
}
