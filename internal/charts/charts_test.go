package charts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func assertPNG(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("chart file is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart file: %v", err)
	}
	if !strings.HasPrefix(string(data[1:4]), "PNG") {
		t.Fatalf("chart file is not a PNG")
	}
}

func TestRenderLine(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderLine(
		[]string{"2020", "2021", "2022", "2023"},
		[]float64{100, 120, 135, 160},
		dir, "line.png", "Revenue", "Year", "Revenue (M USD)",
	)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if path != filepath.Join(dir, "line.png") {
		t.Fatalf("unexpected path %s", path)
	}
	assertPNG(t, path)
}

func TestRenderLineCategoricalAxis(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderLine(
		[]string{"Q1", "Q2", "Q3"},
		[]float64{10, 20, 15},
		dir, "line.png", "Quarterly", "Quarter", "Value",
	)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderLineLengthMismatch(t *testing.T) {
	_, err := RenderLine([]string{"2020", "2021"}, []float64{1, 2, 3}, t.TempDir(), "x.png", "", "", "")
	if err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if !strings.Contains(err.Error(), "same length") {
		t.Fatalf("error should explain the mismatch: %v", err)
	}
}

func TestRenderMultiLine(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderMultiLine(
		[]string{"2021", "2022", "2023"},
		[][]float64{{1, 2, 3}, {3, 2, 1}},
		[]string{"ACME", "GLOBX"},
		dir, "multi.png", "Revenue comparison", "Year", "Revenue",
	)
	if err != nil {
		t.Fatalf("RenderMultiLine: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderMultiLineLabelMismatch(t *testing.T) {
	_, err := RenderMultiLine(
		[]string{"2021", "2022"},
		[][]float64{{1, 2}, {3, 4}},
		[]string{"only-one"},
		t.TempDir(), "x.png", "", "", "",
	)
	if err == nil {
		t.Fatalf("expected label count mismatch error")
	}
}

func TestRenderBar(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderBar(
		[]string{"ACME", "GLOBX", "INIT"},
		[]float64{500, 320, 410},
		dir, "bar.png", "Revenue by company", "Company", "Revenue",
	)
	if err != nil {
		t.Fatalf("RenderBar: %v", err)
	}
	assertPNG(t, path)
}

func TestRenderPie(t *testing.T) {
	dir := t.TempDir()
	path, err := RenderPie(
		[]string{"A", "B", "C", "D"},
		[]float64{10, 20, 30, 40},
		dir, "pie.png", "Breakdown",
	)
	if err != nil {
		t.Fatalf("RenderPie: %v", err)
	}
	assertPNG(t, path)
}

func TestPieValuePercentages(t *testing.T) {
	values, err := pieValues([]string{"A", "B", "C", "D"}, []float64{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("pieValues: %v", err)
	}
	want := []string{"A (10.0%)", "B (20.0%)", "C (30.0%)", "D (40.0%)"}
	for i, v := range values {
		if v.Label != want[i] {
			t.Fatalf("wedge %d label = %q, want %q", i, v.Label, want[i])
		}
	}
}

func TestRenderPieZeroSum(t *testing.T) {
	_, err := RenderPie([]string{"A", "B"}, []float64{0, 0}, t.TempDir(), "x.png", "")
	if err == nil {
		t.Fatalf("zero-sum pie input must be rejected")
	}
	if !strings.Contains(err.Error(), "positive total") {
		t.Fatalf("error should explain the violation: %v", err)
	}
}

func TestRenderPieNegativeValue(t *testing.T) {
	_, err := RenderPie([]string{"A", "B"}, []float64{5, -1}, t.TempDir(), "x.png", "")
	if err == nil {
		t.Fatalf("negative pie values must be rejected")
	}
}

func TestRenderOverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "line.png")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	if _, err := RenderLine([]string{"1", "2"}, []float64{1, 2}, dir, "line.png", "", "", ""); err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	assertPNG(t, path)
}

func TestIntegerTicks(t *testing.T) {
	ticks := integerTicks([]float64{2020, 2021, 2022, 2023, 2024})
	if len(ticks) != 5 {
		t.Fatalf("expected 5 integer ticks, got %d", len(ticks))
	}
	for _, tick := range ticks {
		if tick.Value != float64(int(tick.Value)) {
			t.Fatalf("tick at fractional position %v", tick.Value)
		}
	}
	if ticks[0].Label != "2020" || ticks[4].Label != "2024" {
		t.Fatalf("unexpected tick labels: %v %v", ticks[0].Label, ticks[4].Label)
	}
}
