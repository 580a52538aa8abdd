package extern

import (
	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// EvalFunc evaluates a core expression to a semantic value in env.
// EvalExternFromImpl takes one in rather than importing the evaluator
// directly, since the evaluator (internal/nbe) is the one that calls
// into extern resolution in the first place.
type EvalFunc func(env semantics.Env, expr coreir.Expr) semantics.Sem

// EvalExternFromImpl attempts to resolve a qualified extern reference,
// given its registered (Analysis, Impl) pair and the spine of
// operations accumulated against it so far. It returns false when the
// spine doesn't yet (or no longer cleanly) match what ai.Impl needs —
// the caller keeps the reference stuck as a NeutVar/SemExtern and tries
// again if more of the spine becomes available.
func EvalExternFromImpl(eval EvalFunc, env semantics.Env, qual coreir.Qualified, ai AnalysisImpl, spine []semantics.ExternOp) (semantics.Sem, bool) {
	switch impl := ai.Impl.(type) {
	case ImplExpr:
		return evalImplExpr(eval, env, ai.Analysis, impl, spine)
	case ImplCtor:
		return evalImplCtor(qual, impl, spine)
	case ImplDict:
		return evalImplDict(eval, env, impl, spine)
	case ImplRec:
		return nil, false
	default:
		return nil, false
	}
}

func exactlyOneApp(spine []semantics.ExternOp, arity int) ([]*semantics.Thunk, bool) {
	if len(spine) != 1 {
		return nil, false
	}
	app, ok := spine[0].(semantics.ExternApp)
	if !ok || len(app.Args) != arity {
		return nil, false
	}
	return app.Args, true
}

// recordLiteral reports whether e is, syntactically, a record literal,
// returning it so a projection can be resolved without evaluating e.
func recordLiteral(e coreir.Expr) (coreir.Literal[coreir.Expr], bool) {
	s, ok := e.(*coreir.ExprSyntax)
	if !ok {
		return coreir.Literal[coreir.Expr]{}, false
	}
	lit, ok := s.Syntax.(coreir.LitNode[coreir.Expr])
	if !ok || lit.Lit.Kind != coreir.LitRecord {
		return coreir.Literal[coreir.Expr]{}, false
	}
	return lit.Lit, true
}

func evalImplExpr(eval EvalFunc, env semantics.Env, analysis coreir.Analysis, impl ImplExpr, spine []semantics.ExternOp) (semantics.Sem, bool) {
	freshEnv := func() semantics.Env { return semantics.NewEnv(env.Module, env.EvalExtern) }

	if len(spine) == 0 && len(impl.Params) == 0 {
		return eval(freshEnv(), impl.Body), true
	}

	if len(spine) == 1 {
		if acc, ok := spine[0].(semantics.ExternAccessor); ok && acc.Acc.Kind == coreir.AccProp {
			lit, ok := recordLiteral(impl.Body)
			if !ok {
				return nil, false
			}
			if v, ok := lit.LookupProp(acc.Acc.Prop); ok {
				return eval(freshEnv(), v), true
			}
			return nil, false
		}
	}

	args, ok := exactlyOneApp(spine, len(impl.Params))
	if !ok {
		return nil, false
	}
	if !coreir.ShouldInlineExternApp(analysis, len(args)) {
		return nil, false
	}
	bodyEnv := freshEnv()
	for _, arg := range args {
		bodyEnv = bodyEnv.Extend(arg)
	}
	return eval(bodyEnv, impl.Body), true
}

func evalImplCtor(qual coreir.Qualified, impl ImplCtor, spine []semantics.ExternOp) (semantics.Sem, bool) {
	args, ok := exactlyOneApp(spine, len(impl.Fields))
	if !ok {
		return nil, false
	}
	return semantics.SemNeutral{Neutral: semantics.NeutData{
		Qual:   qual,
		Tag:    impl.Tag,
		Fields: args,
	}}, true
}

// evalImplDict only inlines a dictionary method when the spine is
// exactly a projection immediately saturated by an application: anything
// shorter (a bare `dict.method`) or followed by something other than an
// ExternApp (e.g. `dict.p.otherField`) stays stuck, since there is no
// Expr to evaluate for a method that was never actually called.
func evalImplDict(eval EvalFunc, env semantics.Env, impl ImplDict, spine []semantics.ExternOp) (semantics.Sem, bool) {
	if len(spine) != 2 {
		return nil, false
	}
	acc, ok := spine[0].(semantics.ExternAccessor)
	if !ok || acc.Acc.Kind != coreir.AccProp {
		return nil, false
	}
	method, ok := impl.Methods[acc.Acc.Prop]
	if !ok {
		return nil, false
	}
	app, ok := spine[1].(semantics.ExternApp)
	if !ok || len(app.Args) != len(method.Params) {
		return nil, false
	}
	if !coreir.ShouldInlineExternApp(method.Analysis, len(app.Args)) {
		return nil, false
	}
	bodyEnv := semantics.NewEnv(env.Module, env.EvalExtern)
	for _, arg := range app.Args {
		bodyEnv = bodyEnv.Extend(arg)
	}
	return eval(bodyEnv, method.Body), true
}
