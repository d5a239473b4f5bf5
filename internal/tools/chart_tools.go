package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/finsage/finsage/internal/artifacts"
	"github.com/finsage/finsage/internal/charts"
	"github.com/finsage/finsage/internal/config"
	"github.com/finsage/finsage/internal/models"
)

// Contract violations come back to the model as explanatory text, not
// as tool errors, so the loop can retry with corrected arguments.
func plotFailure(err error) *models.PlotOutput {
	return &models.PlotOutput{Result: "Error: " + err.Error()}
}

func plotSuccess(ctx context.Context, path string) *models.PlotOutput {
	artifacts.Record(ctx, path)
	return &models.PlotOutput{Result: "Graph generated: " + path}
}

func resolveOutput(cfg *config.Config, folder, filename string) (string, string) {
	if folder == "" {
		folder = cfg.GraphDir
	}
	if filename == "" {
		filename = fmt.Sprintf("graph_%s.png", uuid.NewString()[:8])
	}
	return folder, filename
}

var singlePlotParams = map[string]*schema.ParameterInfo{
	"x": {
		Type:     schema.Array,
		Desc:     "List of x values (years or category labels)",
		ElemInfo: &schema.ParameterInfo{Type: schema.String},
		Required: true,
	},
	"y": {
		Type:     schema.Array,
		Desc:     "List of y values",
		ElemInfo: &schema.ParameterInfo{Type: schema.Number},
		Required: true,
	},
	"graph_folder": {
		Type:     schema.String,
		Desc:     "Folder to save the graph in",
		Required: true,
	},
	"filename": {
		Type: schema.String,
		Desc: "Output file name, e.g. graph.png",
	},
	"title": {
		Type: schema.String,
		Desc: "Title of the figure",
	},
	"xlabel": {
		Type: schema.String,
		Desc: "Name of the horizontal axis",
	},
	"ylabel": {
		Type: schema.String,
		Desc: "Name of the vertical axis",
	},
}

// piePlotParams omits the axis labels: a pie chart has no axes to
// name, so the schema must not advertise them.
var piePlotParams = map[string]*schema.ParameterInfo{
	"x": {
		Type:     schema.Array,
		Desc:     "List of wedge labels",
		ElemInfo: &schema.ParameterInfo{Type: schema.String},
		Required: true,
	},
	"y":            singlePlotParams["y"],
	"graph_folder": singlePlotParams["graph_folder"],
	"filename":     singlePlotParams["filename"],
	"title":        singlePlotParams["title"],
}

// NewLinePlotTool plots one series over ordered categories, typically a
// metric over fiscal years.
func NewLinePlotTool(cfg *config.Config) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_line_plot",
			Desc: "Use this tool to generate a line plot, e.g. a metric for one company over several years. " +
				"Required keys: 'x' (list of x values), 'y' (list of y values), 'graph_folder' (folder to save graph in). " +
				"Optional: 'filename', 'title', 'xlabel', 'ylabel'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(singlePlotParams),
		},
		func(ctx context.Context, input models.PlotInput) (*models.PlotOutput, error) {
			folder, filename := resolveOutput(cfg, input.GraphFolder, input.Filename)
			title := input.Title
			if title == "" {
				title = "Line Plot"
			}
			path, err := charts.RenderLine(models.CategoryStrings(input.X), input.Y,
				folder, filename, title, orDefault(input.XLabel, "X"), orDefault(input.YLabel, "Y"))
			if err != nil {
				return plotFailure(err), nil
			}
			return plotSuccess(ctx, path), nil
		},
	)
}

// NewMultiLinePlotTool plots M labeled series over one category axis.
func NewMultiLinePlotTool(cfg *config.Config) tool.BaseTool {
	params := map[string]*schema.ParameterInfo{
		"x": singlePlotParams["x"],
		"y": {
			Type: schema.Array,
			Desc: "List of M lists of y values, one list per series",
			ElemInfo: &schema.ParameterInfo{
				Type:     schema.Array,
				ElemInfo: &schema.ParameterInfo{Type: schema.Number},
			},
			Required: true,
		},
		"labels": {
			Type:     schema.Array,
			Desc:     "List of M labels, one per series",
			ElemInfo: &schema.ParameterInfo{Type: schema.String},
			Required: true,
		},
		"graph_folder": singlePlotParams["graph_folder"],
		"filename":     singlePlotParams["filename"],
		"title":        singlePlotParams["title"],
		"xlabel":       singlePlotParams["xlabel"],
		"ylabel":       singlePlotParams["ylabel"],
	}

	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_multiline_plot",
			Desc: "Use this tool to generate line plots for M multiple datasets sharing one x axis, " +
				"e.g. comparing a metric across several companies over time. " +
				"Required keys: 'x' (list of x values), 'y' (list of M lists of y values), 'labels' (list of M labels), " +
				"'graph_folder' (folder to save graph in). Optional: 'filename', 'title', 'xlabel', 'ylabel'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		func(ctx context.Context, input models.MultiPlotInput) (*models.PlotOutput, error) {
			folder, filename := resolveOutput(cfg, input.GraphFolder, input.Filename)
			title := input.Title
			if title == "" {
				title = "Multiline Plot"
			}
			path, err := charts.RenderMultiLine(models.CategoryStrings(input.X), input.Y, input.Labels,
				folder, filename, title, orDefault(input.XLabel, "X"), orDefault(input.YLabel, "Y"))
			if err != nil {
				return plotFailure(err), nil
			}
			return plotSuccess(ctx, path), nil
		},
	)
}

// NewBarPlotTool plots one series against categorical x values,
// typically different companies in one year.
func NewBarPlotTool(cfg *config.Config) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_bar_plot",
			Desc: "Use this tool to generate a bar plot, e.g. a metric for different companies in a specific year. " +
				"Required keys: 'x' (list of x values), 'y' (list of y values), 'graph_folder' (folder to save graph in). " +
				"Optional: 'filename', 'title', 'xlabel', 'ylabel'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(singlePlotParams),
		},
		func(ctx context.Context, input models.PlotInput) (*models.PlotOutput, error) {
			folder, filename := resolveOutput(cfg, input.GraphFolder, input.Filename)
			title := input.Title
			if title == "" {
				title = "Bar Plot"
			}
			path, err := charts.RenderBar(models.CategoryStrings(input.X), input.Y,
				folder, filename, title, orDefault(input.XLabel, "X"), orDefault(input.YLabel, "Y"))
			if err != nil {
				return plotFailure(err), nil
			}
			return plotSuccess(ctx, path), nil
		},
	)
}

// NewPieChartTool plots the breakdown of a quantity into labeled
// wedges annotated with their share of the total.
func NewPieChartTool(cfg *config.Config) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "generate_pie_chart",
			Desc: "Use this tool to generate a pie chart showing the breakdown of a quantity into different aspects. " +
				"Required keys: 'x' (list of labels), 'y' (list of non-negative values), 'graph_folder' (folder to save graph in). " +
				"Optional: 'filename', 'title'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(piePlotParams),
		},
		func(ctx context.Context, input models.PlotInput) (*models.PlotOutput, error) {
			folder, filename := resolveOutput(cfg, input.GraphFolder, input.Filename)
			title := input.Title
			if title == "" {
				title = "Pie Chart"
			}
			path, err := charts.RenderPie(models.CategoryStrings(input.X), input.Y, folder, filename, title)
			if err != nil {
				return plotFailure(err), nil
			}
			return plotSuccess(ctx, path), nil
		},
	)
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
