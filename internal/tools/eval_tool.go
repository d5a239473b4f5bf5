package tools

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/expr-lang/expr"

	"github.com/finsage/finsage/internal/models"
)

// evalTimeout caps one expression evaluation. The evaluator has no
// filesystem, network or SQL access, so the time cap is the only
// resource the expression can consume.
const evalTimeout = 5 * time.Second

// evalEnv is the fixed function allowlist available to expressions, on
// top of the evaluator's arithmetic and its sum/mean/min/max builtins.
var evalEnv = map[string]any{
	"sqrt": math.Sqrt,
	"pow":  math.Pow,
	"log":  math.Log,
	"exp":  math.Exp,
}

// NewEvalTool exposes a restricted expression evaluator for arithmetic
// the model cannot push into SQL, replacing a general code sandbox.
func NewEvalTool() tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "evaluate_expression",
			Desc: "Evaluate a single arithmetic expression and return the result, e.g. '(152.3 - 140.1) / 140.1 * 100' " +
				"or 'mean([1.2, 3.4, 5.6])'. Supports +,-,*,/,%,**, comparisons, sum/mean/min/max over lists, " +
				"and sqrt/pow/log/exp. This is an expression evaluator, not a shell: it cannot access files, " +
				"the network, or the database.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"expression": {
					Type:     schema.String,
					Desc:     "The expression to evaluate",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.EvalInput) (*models.EvalOutput, error) {
			result, err := Evaluate(ctx, input.Expression)
			if err != nil {
				return &models.EvalOutput{Result: "Error: " + err.Error()}, nil
			}
			return &models.EvalOutput{Result: result}, nil
		},
	)
}

// Evaluate compiles and runs one expression under the evaluation time
// cap. Runtime failures are returned as errors, not panics.
func Evaluate(ctx context.Context, expression string) (string, error) {
	program, err := expr.Compile(expression, expr.Env(evalEnv))
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := expr.Run(program, evalEnv)
		done <- outcome{value, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("expression evaluation timed out after %s", evalTimeout)
	case out := <-done:
		if out.err != nil {
			return "", fmt.Errorf("evaluation failed: %w", out.err)
		}
		return fmt.Sprintf("%v", out.value), nil
	}
}
