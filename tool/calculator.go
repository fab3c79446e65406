package tool

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
)

type calculatorInput struct {
	Expression string `json:"expression" description:"Arithmetic expression to evaluate, e.g. (2+3)*4"`
}

// NewCalculator returns a tool that evaluates arithmetic expressions.
// Non-numeric results (strings, booleans) are rejected so the tool cannot be
// repurposed as a general expression runner.
func NewCalculator() Tool {
	return NewFunc("calculator", "Evaluates arithmetic expressions and returns the numeric result.",
		func(ctx context.Context, in calculatorInput) (string, error) {
			program, err := expr.Compile(in.Expression)
			if err != nil {
				return "", fmt.Errorf("invalid expression %q: %w", in.Expression, err)
			}

			out, err := expr.Run(program, nil)
			if err != nil {
				return "", fmt.Errorf("evaluate %q: %w", in.Expression, err)
			}

			switch v := out.(type) {
			case int, int64, float64, uint, uint64:
				return fmt.Sprintf("The result of the calculation is: %v", v), nil
			default:
				return "", fmt.Errorf("expression %q did not produce a number (got %T)", in.Expression, out)
			}
		})
}
