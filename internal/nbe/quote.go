package nbe

import (
	"fmt"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/diagnostics"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// Quote walks a semantic value back into an Expr, substituting a fresh
// neutral placeholder for every binder it passes under. Every node it
// produces goes through Build rather than a bare constructor, so the
// structural rewrites (App/Abs flattening, let re-association, inlining,
// eta-contraction, branch flattening) apply uniformly regardless of
// which evaluator rule produced the Sem being quoted.
func Quote(ctx *Ctx, s semantics.Sem) coreir.Expr {
	switch v := s.(type) {
	case semantics.SemLam:
		level := ctx.Fresh()
		placeholder := semantics.SemNeutral{Neutral: semantics.NeutLocal{Ident: v.Ident, Level: level}}
		body := Quote(ctx, v.Apply(semantics.Ready(placeholder)))
		return Build(coreir.Abs[coreir.Expr]{Params: []coreir.Param{{Ident: v.Ident, Level: level}}, Body: body})

	case semantics.SemExtern:
		n, ok := toNeutral(v)
		if !ok {
			panic(diagnostics.Wrap(diagnostics.Quote(diagnostics.QUO002,
				"unresolved extern reference could not be converted to neutral form",
				map[string]any{"qual": v.Qual.String()})))
		}
		return quoteNeutral(ctx, n)

	case semantics.SemLet:
		level := ctx.Fresh()
		bindingExpr := Quote(ctx, v.Binding)
		placeholder := semantics.SemNeutral{Neutral: semantics.NeutLocal{Ident: v.Ident, Level: level}}
		bodyExpr := Quote(ctx, v.Cont(placeholder))
		return Build(coreir.Let[coreir.Expr]{Ident: v.Ident, Level: level, Binding: bindingExpr, Body: bodyExpr})

	case semantics.SemLetRec:
		return quoteLetRec(ctx, v)

	case semantics.SemEffectBind:
		level := ctx.Fresh()
		actionExpr := Quote(ctx, v.Action)
		placeholder := semantics.SemNeutral{Neutral: semantics.NeutLocal{Ident: v.Ident, Level: level}}
		bodyExpr := Quote(ctx, v.Cont(placeholder))
		return Build(coreir.EffectBind[coreir.Expr]{Ident: v.Ident, Level: level, Binding: actionExpr, Body: bodyExpr})

	case semantics.SemEffectPure:
		return Build(coreir.EffectPure[coreir.Expr]{Value: Quote(ctx, v.Value)})

	case semantics.SemAccessor:
		return Build(coreir.AccessorNode[coreir.Expr]{Lhs: Quote(ctx, v.Base), Acc: v.Acc})

	case semantics.SemUpdate:
		return Build(coreir.Update[coreir.Expr]{Lhs: Quote(ctx, v.Base), Props: quoteUpdateProps(ctx, v.Props)})

	case semantics.SemBranch:
		return quoteBranch(ctx, v)

	case semantics.SemBranchTry:
		return quoteBranchTry(ctx, v)

	case semantics.SemNeutral:
		return quoteNeutral(ctx, v.Neutral)

	default:
		panic(fmt.Sprintf("nbe: Quote: unhandled Sem %T", s))
	}
}

func quoteUpdateProps(ctx *Ctx, props []semantics.SemUpdateProp) []coreir.UpdateProp[coreir.Expr] {
	out := make([]coreir.UpdateProp[coreir.Expr], len(props))
	for i, p := range props {
		out[i] = coreir.UpdateProp[coreir.Expr]{Key: p.Key, Value: Quote(ctx, p.Value)}
	}
	return out
}

func quoteLetRec(ctx *Ctx, v semantics.SemLetRec) coreir.Expr {
	level := ctx.Fresh()
	placeholders := make([]semantics.Sem, len(v.Idents))
	slots := make([]*semantics.Thunk, len(v.Idents))
	for i, id := range v.Idents {
		id := id
		placeholders[i] = semantics.SemNeutral{Neutral: semantics.NeutLocal{Ident: &id, Level: level}}
		slots[i] = semantics.Ready(placeholders[i])
	}

	values := v.EvalBindings(slots)
	bindings := make([]coreir.RecBinding[coreir.Expr], len(v.Idents))
	for i, id := range v.Idents {
		bindings[i] = coreir.RecBinding[coreir.Expr]{Ident: id, Level: level, Value: Quote(ctx, values[i])}
	}

	bodyExpr := Quote(ctx, v.Cont(placeholders))
	return Build(coreir.LetRec[coreir.Expr]{Level: level, Bindings: bindings, Body: bodyExpr})
}

// quoteBranch reconstructs a Branch node from an assembled SemBranch.
// Its own cases and default quote under a cleared resume state — a
// fresh case analysis, not a continuation of whatever the caller was in
// the middle of — but if there's no explicit default, a resume state
// left behind by an enclosing SemBranchTry supplies one, refolded
// through the same arm-folding algorithm evalBranch uses in case
// quoting any of its predicates resolved it further.
func quoteBranch(ctx *Ctx, v semantics.SemBranch) coreir.Expr {
	cleared := ctx.withResume(nil)

	cases := make([]coreir.BranchCase[coreir.Expr], len(v.Cases))
	for i, c := range v.Cases {
		cases[i] = coreir.BranchCase[coreir.Expr]{Pred: Quote(cleared, c.Pred), Body: Quote(cleared, c.Body())}
	}

	var def *coreir.Expr
	switch {
	case v.Default != nil:
		d := Quote(cleared, v.Default())
		def = &d
	case ctx.resume != nil:
		resumed := runBranches(nil, armsFromSem(ctx.resume.cases), ctx.resume.def)
		d := Quote(cleared, resumed)
		def = &d
	}

	return Build(coreir.Branch[coreir.Expr]{Cases: cases, Default: def})
}

// quoteBranchTry folds body's leftover siblings into the ambient resume
// state and quotes body under it: when neither side has settled on a
// default yet, the siblings concatenate (both are still live
// possibilities); once either side has, the inner try's cases/default
// are what's left to examine and replace the outer state outright.
func quoteBranchTry(ctx *Ctx, v semantics.SemBranchTry) coreir.Expr {
	next := &resumeState{cases: v.Cases, def: v.Default}
	if ctx.resume != nil && ctx.resume.def == nil && v.Default == nil {
		next = &resumeState{
			cases: append(append([]semantics.SemBranchCase{}, ctx.resume.cases...), v.Cases...),
		}
	}
	return Quote(ctx.withResume(next), v.Body)
}

func quoteNeutral(ctx *Ctx, n semantics.Neutral) coreir.Expr {
	switch v := n.(type) {
	case semantics.NeutLocal:
		return Build(coreir.Local{Ident: v.Ident, Level: v.Level})

	case semantics.NeutVar:
		return Build(coreir.Var{Qual: v.Qual})

	case semantics.NeutData:
		if len(v.Fields) == 0 {
			return Build(coreir.Var{Qual: v.Qual})
		}
		fields := make([]coreir.Expr, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Quote(ctx, f.Force())
		}
		return Build(coreir.CtorSaturated[coreir.Expr]{Qual: v.Qual, Tag: v.Tag, Fields: fields})

	case semantics.NeutCtorDef:
		return Build(v.Def)

	case semantics.NeutApp:
		if len(v.Args) == 0 {
			return quoteNeutral(ctx, v.Head)
		}
		args := make([]coreir.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Quote(ctx, a.Force())
		}
		return Build(coreir.App[coreir.Expr]{Head: quoteNeutral(ctx, v.Head), Args: args})

	case semantics.NeutAccessor:
		return Build(coreir.AccessorNode[coreir.Expr]{Lhs: quoteNeutral(ctx, v.Base), Acc: v.Acc})

	case semantics.NeutUpdate:
		return Build(coreir.Update[coreir.Expr]{Lhs: quoteNeutral(ctx, v.Base), Props: quoteUpdateProps(ctx, v.Props)})

	case semantics.NeutTest:
		return Build(coreir.Test[coreir.Expr]{Lhs: quoteNeutral(ctx, v.Lhs), Guard: v.Guard})

	case semantics.NeutLit:
		return Build(coreir.LitNode[coreir.Expr]{Lit: coreir.MapLiteral(v.Lit, func(s semantics.Sem) coreir.Expr { return Quote(ctx, s) })})

	case semantics.NeutFail:
		return Build(coreir.Fail{Message: v.Message})

	default:
		panic(fmt.Sprintf("nbe: quoteNeutral: unhandled Neutral %T", n))
	}
}
