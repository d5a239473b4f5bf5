// Package models defines the typed input and output contracts for the
// tools exposed to the agent loop.
package models

import (
	"fmt"
	"math"
	"strconv"
)

// PlotInput drives the single-series chart tools. X values may arrive
// as numbers or strings, so they are coerced via CategoryStrings.
type PlotInput struct {
	X           []any     `json:"x"`
	Y           []float64 `json:"y"`
	GraphFolder string    `json:"graph_folder"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title,omitempty"`
	XLabel      string    `json:"xlabel,omitempty"`
	YLabel      string    `json:"ylabel,omitempty"`
}

// MultiPlotInput drives the multi-series line tool; Labels must have
// one entry per series in Y.
type MultiPlotInput struct {
	X           []any       `json:"x"`
	Y           [][]float64 `json:"y"`
	Labels      []string    `json:"labels"`
	GraphFolder string      `json:"graph_folder"`
	Filename    string      `json:"filename"`
	Title       string      `json:"title,omitempty"`
	XLabel      string      `json:"xlabel,omitempty"`
	YLabel      string      `json:"ylabel,omitempty"`
}

// PlotOutput is the free-text confirmation returned to the agent loop.
type PlotOutput struct {
	Result string `json:"result"`
}

type QueryInput struct {
	Query string `json:"query"`
}

type QueryOutput struct {
	Result string `json:"result"`
}

type EvalInput struct {
	Expression string `json:"expression"`
}

type EvalOutput struct {
	Result string `json:"result"`
}

type QuoteInput struct {
	Symbol string `json:"symbol"`
}

type QuoteOutput struct {
	Result string `json:"result"`
}

// CategoryStrings renders mixed numeric/string x values as labels.
// Integral numbers drop the fractional part so years never render as
// "2023.000000".
func CategoryStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case string:
			out[i] = val
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < 1e15 {
				out[i] = strconv.FormatInt(int64(val), 10)
			} else {
				out[i] = strconv.FormatFloat(val, 'g', -1, 64)
			}
		case int:
			out[i] = strconv.Itoa(val)
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}
