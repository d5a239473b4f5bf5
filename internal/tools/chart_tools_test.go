package tools

import (
	"context"
	"testing"

	"github.com/finsage/finsage/internal/config"
)

func TestPieChartToolSchemaOmitsAxisLabels(t *testing.T) {
	cfg := &config.Config{GraphDir: t.TempDir()}
	ctx := context.Background()

	info, err := NewPieChartTool(cfg).Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	params, err := info.ParamsOneOf.ToOpenAPIV3()
	if err != nil {
		t.Fatalf("ToOpenAPIV3: %v", err)
	}

	for _, key := range []string{"x", "y", "graph_folder", "filename", "title"} {
		if _, ok := params.Properties[key]; !ok {
			t.Fatalf("pie schema missing parameter %q", key)
		}
	}
	for _, key := range []string{"xlabel", "ylabel"} {
		if _, ok := params.Properties[key]; ok {
			t.Fatalf("pie schema must not advertise %q", key)
		}
	}

	lineInfo, err := NewLinePlotTool(cfg).Info(ctx)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	lineParams, err := lineInfo.ParamsOneOf.ToOpenAPIV3()
	if err != nil {
		t.Fatalf("ToOpenAPIV3: %v", err)
	}
	for _, key := range []string{"xlabel", "ylabel"} {
		if _, ok := lineParams.Properties[key]; !ok {
			t.Fatalf("line schema missing axis label parameter %q", key)
		}
	}
}
