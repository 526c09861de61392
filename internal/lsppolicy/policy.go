// Package lsppolicy lets an operator reject inbound headers on a custom
// CEL expression (e.g. a tighter Content-Length ceiling than the wire
// protocol itself enforces). An Evaluator compiles once and evaluates
// many times, under a bounded expression length, a runtime cost budget,
// and a nesting-depth guard.
package lsppolicy

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/lspframe/lspframe/internal/lsperrors"
)

// maxExpressionLength bounds the size of a header policy expression.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit, preventing a pathological
// expression from burning CPU on every header.
const maxCostBudget = 10_000

// maxNestingDepth bounds parenthesis/bracket/brace nesting in the source.
const maxNestingDepth = 32

// Evaluator compiles and evaluates a single header policy expression. The
// expression sees one variable, `header`, a map[string]string of the
// parsed header fields (Content-Length, Content-Type, and any others),
// and must evaluate to a bool: true allows the header, false rejects it.
type Evaluator struct {
	program cel.Program
}

// NewEvaluator compiles expression into a reusable Evaluator. Returns an
// InvariantViolation if the expression is too long, too deeply nested, or
// fails to compile/type-check (it must produce a bool).
func NewEvaluator(expression string) (*Evaluator, error) {
	if len(expression) > maxExpressionLength {
		return nil, lsperrors.NewInvariantViolation(
			"policy-too-long",
			fmt.Sprintf("header policy expression exceeds %d characters", maxExpressionLength),
		)
	}
	if depth := maxNesting(expression); depth > maxNestingDepth {
		return nil, lsperrors.NewInvariantViolation(
			"policy-too-nested",
			fmt.Sprintf("header policy expression nesting depth %d exceeds limit %d", depth, maxNestingDepth),
		)
	}

	env, err := cel.NewEnv(
		cel.Variable("header", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, lsperrors.NewInvariantViolation("policy-env", err.Error())
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, lsperrors.NewInvariantViolation("policy-compile", issues.Err().Error())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, lsperrors.NewInvariantViolation(
			"policy-not-bool",
			"header policy expression must evaluate to a bool",
		)
	}

	prg, err := env.Program(ast, cel.EvalOptions(cel.OptOptimize), cel.CostLimit(maxCostBudget))
	if err != nil {
		return nil, lsperrors.NewInvariantViolation("policy-program", err.Error())
	}
	return &Evaluator{program: prg}, nil
}

// Allow evaluates the policy against a parsed header mapping.
func (e *Evaluator) Allow(ctx context.Context, header map[string]string) (bool, error) {
	if e == nil {
		return true, nil
	}
	vars := map[string]any{"header": header}
	out, _, err := e.program.ContextEval(ctx, vars)
	if err != nil {
		return false, lsperrors.NewInvariantViolation("policy-eval", err.Error())
	}
	allowed, ok := out.Value().(bool)
	if !ok {
		return false, lsperrors.NewInvariantViolation("policy-eval", "policy did not return a bool")
	}
	return allowed, nil
}

func maxNesting(expr string) int {
	var depth, max int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > max {
				max = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	return max
}
