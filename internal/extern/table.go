package extern

import (
	"sync"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/directive"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// Table is a concurrency-safe registry of extern implementations, keyed
// by qualified name. Multiple optimizer runs over different modules can
// share one Table; lookups are far more frequent than registrations, so
// reads take only a read lock.
type Table struct {
	mu      sync.RWMutex
	entries map[coreir.Qualified]AnalysisImpl
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[coreir.Qualified]AnalysisImpl)}
}

// Register records how qual is implemented. A second call for the same
// qual overwrites the first — callers that build a Table incrementally
// as modules link in are expected to register each qual exactly once,
// but Table itself doesn't enforce that.
func (t *Table) Register(qual coreir.Qualified, analysis coreir.Analysis, impl Impl) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[qual] = AnalysisImpl{Analysis: analysis, Impl: impl}
}

// Lookup returns qual's registered analysis and implementation, or
// false if nothing was ever registered for it.
func (t *Table) Lookup(qual coreir.Qualified) (AnalysisImpl, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ai, ok := t.entries[qual]
	return ai, ok
}

// ResolveFunc builds the semantics.EvalExternFunc the evaluator calls
// through: a lookup against t followed by EvalExternFromImpl, except
// for a saturated ImplExpr application naming a qual that directives
// overrides — there, the override (never/always/once-N-args-applied)
// replaces the default cost heuristic outright rather than consulting
// it. module is the Env.Module a freshly-entered extern body evaluates
// under; the returned func is self-referencing so nested externs
// reached from within a body resolve through the same table and
// directives.
func (t *Table) ResolveFunc(eval EvalFunc, module coreir.ModuleName, directives map[directive.EvalRef]directive.InlineDirective) semantics.EvalExternFunc {
	var resolve semantics.EvalExternFunc
	resolve = func(qual coreir.Qualified, spine []semantics.ExternOp) (semantics.Sem, bool) {
		ai, ok := t.Lookup(qual)
		if !ok {
			return nil, false
		}
		env := semantics.NewEnv(module, resolve)

		if impl, isExpr := ai.Impl.(ImplExpr); isExpr {
			if args, ok := exactlyOneApp(spine, len(impl.Params)); ok {
				if d, overridden := directives[directive.EvalRef{Qual: qual}]; overridden && d.Kind != directive.InlineDefault {
					if !directiveAllowsInline(d, len(args)) {
						return nil, false
					}
					bodyEnv := env
					for _, arg := range args {
						bodyEnv = bodyEnv.Extend(arg)
					}
					return eval(bodyEnv, impl.Body), true
				}
			}
		}

		return EvalExternFromImpl(eval, env, qual, ai, spine)
	}
	return resolve
}

func directiveAllowsInline(d directive.InlineDirective, numArgs int) bool {
	switch d.Kind {
	case directive.InlineNever:
		return false
	case directive.InlineArityN:
		return numArgs >= d.Arity
	default: // InlineAlways
		return true
	}
}
