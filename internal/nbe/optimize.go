package nbe

import (
	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/diagnostics"
	"github.com/corefn-dev/nbeopt/internal/directive"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// defaultMaxIterations bounds the fixed-point loop so a mistaken rewrite
// rule that keeps flagging itself as productive can't hang the optimizer
// forever; a converging pass finishes in a handful of rounds long
// before this is ever reached. Used whenever a caller doesn't supply its
// own cap (maxIters <= 0).
const defaultMaxIterations = 64

// Optimize repeatedly evaluates expr into the semantic domain and
// quotes it back out until a pass produces no further rewrite (the top
// node's analysis has its Rewrite flag clear), or maxIters is hit (a
// non-positive maxIters falls back to defaultMaxIterations). directives
// is stored on each pass's Ctx, where nothing reads it; extern inlining
// overrides take effect through env's EvalExtern (see
// extern.Table.ResolveFunc).
func Optimize(env semantics.Env, expr coreir.Expr, directives map[directive.EvalRef]directive.InlineDirective, maxIters int) coreir.Expr {
	if maxIters <= 0 {
		maxIters = defaultMaxIterations
	}
	current := expr
	for i := 0; i < maxIters; i++ {
		ctx := NewCtx(env.NextLevel(), directives)
		next := Quote(ctx, Eval(env, current))
		if !next.Analysis().Rewrite {
			return next
		}
		current = next
	}
	panic(diagnostics.Wrap(diagnostics.Optimize(diagnostics.OPT001,
		"fixed point not reached within the iteration cap",
		map[string]any{"max_iterations": maxIters})))
}
