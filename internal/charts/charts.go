// Package charts renders line, multi-line, bar and pie charts to PNG
// files. Inputs are validated up front: mismatched category/series
// lengths are contract violations, never silently truncated.
package charts

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	defaultWidth  = 800
	defaultHeight = 500
)

// RenderLine draws one numeric series against ordered categories and
// writes the PNG to dir/filename, returning the written path.
func RenderLine(categories []string, series []float64, dir, filename, title, xlabel, ylabel string) (string, error) {
	if len(categories) != len(series) {
		return "", fmt.Errorf("categories and series must be the same length (%d vs %d)", len(categories), len(series))
	}
	if len(series) < 2 {
		return "", fmt.Errorf("a line plot needs at least 2 data points, got %d", len(series))
	}

	xValues, ticks := categoryAxis(categories)
	graph := chart.Chart{
		Title:  title,
		Width:  defaultWidth,
		Height: defaultHeight,
		XAxis: chart.XAxis{
			Name:  xlabel,
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Name: ylabel},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xValues,
				YValues: series,
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(0),
					DotColor:    chart.GetDefaultColor(0),
					DotWidth:    3,
				},
			},
		},
	}

	return writeChart(&graph, dir, filename)
}

// RenderMultiLine draws several labeled series over one category axis
// with a legend; len(series) must equal len(labels).
func RenderMultiLine(categories []string, series [][]float64, labels []string, dir, filename, title, xlabel, ylabel string) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("at least one series is required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("series and labels must be the same length (%d vs %d)", len(series), len(labels))
	}
	for i, ys := range series {
		if len(ys) != len(categories) {
			return "", fmt.Errorf("series %q and categories must be the same length (%d vs %d)", labels[i], len(ys), len(categories))
		}
	}
	if len(categories) < 2 {
		return "", fmt.Errorf("a line plot needs at least 2 data points, got %d", len(categories))
	}

	xValues, ticks := categoryAxis(categories)
	graph := chart.Chart{
		Title:  title,
		Width:  defaultWidth,
		Height: defaultHeight,
		XAxis: chart.XAxis{
			Name:  xlabel,
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Name: ylabel},
	}
	for i, ys := range series {
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    labels[i],
			XValues: xValues,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: chart.GetDefaultColor(i),
				DotColor:    chart.GetDefaultColor(i),
				DotWidth:    float64(2 + i%3),
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return writeChart(&graph, dir, filename)
}

// RenderBar draws one numeric series against categorical x-values with
// rotated category labels.
func RenderBar(categories []string, series []float64, dir, filename, title, xlabel, ylabel string) (string, error) {
	if len(categories) != len(series) {
		return "", fmt.Errorf("categories and series must be the same length (%d vs %d)", len(categories), len(series))
	}
	if len(series) == 0 {
		return "", fmt.Errorf("a bar plot needs at least 1 data point")
	}

	bars := make([]chart.Value, 0, len(series))
	for i, v := range series {
		bars = append(bars, chart.Value{Label: categories[i], Value: v})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    defaultWidth,
		Height:   defaultHeight,
		BarWidth: 40,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{Name: ylabel},
		Bars:  bars,
	}
	_ = xlabel // bar charts label categories directly under each bar

	return writeBarChart(&graph, dir, filename)
}

// RenderPie draws a pie chart whose wedge labels carry each value's
// percentage of the total. A zero or negative total is a contract
// violation.
func RenderPie(categories []string, series []float64, dir, filename, title string) (string, error) {
	values, err := pieValues(categories, series)
	if err != nil {
		return "", err
	}

	graph := chart.PieChart{
		Title:  title,
		Width:  defaultHeight,
		Height: defaultHeight,
		Values: values,
	}

	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render pie chart: %w", err)
	}
	return path, nil
}

func pieValues(categories []string, series []float64) ([]chart.Value, error) {
	if len(categories) != len(series) {
		return nil, fmt.Errorf("categories and series must be the same length (%d vs %d)", len(categories), len(series))
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("a pie chart needs at least 1 value")
	}

	total := 0.0
	for i, v := range series {
		if v < 0 {
			return nil, fmt.Errorf("pie value for %q is negative (%g)", categories[i], v)
		}
		total += v
	}
	if total <= 0 {
		return nil, fmt.Errorf("pie values must sum to a positive total, got %g", total)
	}

	values := make([]chart.Value, 0, len(series))
	for i, v := range series {
		values = append(values, chart.Value{
			Value: v,
			Label: fmt.Sprintf("%s (%.1f%%)", categories[i], v/total*100),
		})
	}
	return values, nil
}

// categoryAxis maps categories onto the x axis. Numeric categories keep
// their values with ticks only at integer positions, so fiscal years
// never render as fractions; non-numeric categories become an index
// axis labeled by the category text.
func categoryAxis(categories []string) ([]float64, []chart.Tick) {
	if nums, ok := numericCategories(categories); ok {
		ticks := integerTicks(nums)
		return nums, ticks
	}

	xValues := make([]float64, len(categories))
	ticks := make([]chart.Tick, 0, len(categories))
	for i, label := range categories {
		xValues[i] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	return xValues, ticks
}

func numericCategories(categories []string) ([]float64, bool) {
	nums := make([]float64, len(categories))
	for i, c := range categories {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

func integerTicks(values []float64) []chart.Tick {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	start := int(math.Ceil(lo))
	end := int(math.Floor(hi))
	if end < start {
		return nil
	}
	step := 1
	if span := end - start; span > 12 {
		step = (span + 11) / 12
	}

	var ticks []chart.Tick
	for v := start; v <= end; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

func writeChart(graph *chart.Chart, dir, filename string) (string, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return path, nil
}

func writeBarChart(graph *chart.BarChart, dir, filename string) (string, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render bar chart: %w", err)
	}
	return path, nil
}
