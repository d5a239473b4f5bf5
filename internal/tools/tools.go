// Package tools builds the typed tool set exposed to the agent loop:
// four chart generators, a read-only SQL tool, a restricted expression
// evaluator and a live quote lookup.
package tools

import (
	"database/sql"

	"github.com/cloudwego/eino/components/tool"

	"github.com/finsage/finsage/internal/config"
)

// NewToolSet assembles every tool the agent may call. Tools are
// stateless and reused across requests.
func NewToolSet(cfg *config.Config, pool *sql.DB) []tool.BaseTool {
	return []tool.BaseTool{
		NewQueryTool(pool),
		NewEvalTool(),
		NewQuoteTool(),
		NewLinePlotTool(cfg),
		NewMultiLinePlotTool(cfg),
		NewBarPlotTool(cfg),
		NewPieChartTool(cfg),
	}
}
