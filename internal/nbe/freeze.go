package nbe

import (
	"fmt"

	"github.com/corefn-dev/nbeopt/internal/coreir"
)

// Freeze converts an Expr produced by Optimize into the pure,
// rewrite-free NeutralExpr form code generation consumes, discarding
// the per-node Analysis along the way (Freeze's caller gets the
// top-level Analysis back separately; nothing downstream needs
// per-subtree metadata once optimization is done). Freeze expects its
// input to already be at a fixed point — running it on an Expr that
// still has Rewrite set somewhere just bakes that rewrite in rather
// than resolving it, since Freeze never re-evaluates.
func Freeze(expr coreir.Expr) (*coreir.NeutralExpr, coreir.Analysis) {
	return freeze(expr), expr.Analysis()
}

func freeze(expr coreir.Expr) *coreir.NeutralExpr {
	switch e := expr.(type) {
	case *coreir.ExprSyntax:
		return freezeSyntax(e.Syntax)
	case *coreir.ExprRewrite:
		return freezeRewrite(e.Rewrite)
	default:
		panic(fmt.Sprintf("nbe: Freeze: unhandled Expr %T", expr))
	}
}

func freezeRewrite(r coreir.Rewrite) *coreir.NeutralExpr {
	switch n := r.(type) {
	case coreir.Inline:
		return &coreir.NeutralExpr{Syntax: coreir.Let[*coreir.NeutralExpr]{
			Ident:   n.Ident,
			Level:   n.Level,
			Binding: freeze(n.Binding),
			Body:    freeze(n.Body),
		}}

	case coreir.LetAssoc:
		return freezeLetChain(n.Bindings, n.Body)

	default:
		panic(fmt.Sprintf("nbe: Freeze: unhandled Rewrite %T", r))
	}
}

// freezeLetChain rebuilds the right-leaning nest of Lets a LetAssoc
// flattened: the first binding becomes the outermost Let, wrapping a
// chain that ends with the last binding wrapping the original body.
func freezeLetChain(bindings []coreir.LetAssocBinding, body coreir.Expr) *coreir.NeutralExpr {
	if len(bindings) == 0 {
		return freeze(body)
	}
	b := bindings[0]
	return &coreir.NeutralExpr{Syntax: coreir.Let[*coreir.NeutralExpr]{
		Ident:   b.Ident,
		Level:   b.Level,
		Binding: freeze(b.Binding),
		Body:    freezeLetChain(bindings[1:], body),
	}}
}

func freezeSyntax(s coreir.Syntax[coreir.Expr]) *coreir.NeutralExpr {
	switch n := s.(type) {
	case coreir.Var:
		return &coreir.NeutralExpr{Syntax: coreir.Var{Qual: n.Qual}}

	case coreir.Local:
		return &coreir.NeutralExpr{Syntax: coreir.Local{Ident: n.Ident, Level: n.Level}}

	case coreir.LitNode[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.LitNode[*coreir.NeutralExpr]{
			Lit: coreir.MapLiteral(n.Lit, freeze),
		}}

	case coreir.App[coreir.Expr]:
		args := make([]*coreir.NeutralExpr, len(n.Args))
		for i, a := range n.Args {
			args[i] = freeze(a)
		}
		return &coreir.NeutralExpr{Syntax: coreir.App[*coreir.NeutralExpr]{Head: freeze(n.Head), Args: args}}

	case coreir.Abs[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.Abs[*coreir.NeutralExpr]{Params: n.Params, Body: freeze(n.Body)}}

	case coreir.Let[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.Let[*coreir.NeutralExpr]{
			Ident:   n.Ident,
			Level:   n.Level,
			Binding: freeze(n.Binding),
			Body:    freeze(n.Body),
		}}

	case coreir.LetRec[coreir.Expr]:
		bindings := make([]coreir.RecBinding[*coreir.NeutralExpr], len(n.Bindings))
		for i, b := range n.Bindings {
			bindings[i] = coreir.RecBinding[*coreir.NeutralExpr]{Ident: b.Ident, Level: b.Level, Value: freeze(b.Value)}
		}
		return &coreir.NeutralExpr{Syntax: coreir.LetRec[*coreir.NeutralExpr]{Level: n.Level, Bindings: bindings, Body: freeze(n.Body)}}

	case coreir.EffectBind[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.EffectBind[*coreir.NeutralExpr]{
			Ident:   n.Ident,
			Level:   n.Level,
			Binding: freeze(n.Binding),
			Body:    freeze(n.Body),
		}}

	case coreir.EffectPure[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.EffectPure[*coreir.NeutralExpr]{Value: freeze(n.Value)}}

	case coreir.AccessorNode[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.AccessorNode[*coreir.NeutralExpr]{Lhs: freeze(n.Lhs), Acc: n.Acc}}

	case coreir.Update[coreir.Expr]:
		props := make([]coreir.UpdateProp[*coreir.NeutralExpr], len(n.Props))
		for i, p := range n.Props {
			props[i] = coreir.UpdateProp[*coreir.NeutralExpr]{Key: p.Key, Value: freeze(p.Value)}
		}
		return &coreir.NeutralExpr{Syntax: coreir.Update[*coreir.NeutralExpr]{Lhs: freeze(n.Lhs), Props: props}}

	case coreir.Branch[coreir.Expr]:
		cases := make([]coreir.BranchCase[*coreir.NeutralExpr], len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = coreir.BranchCase[*coreir.NeutralExpr]{Pred: freeze(c.Pred), Body: freeze(c.Body)}
		}
		var def *coreir.NeutralExpr
		var defSlot **coreir.NeutralExpr
		if n.Default != nil {
			def = freeze(*n.Default)
			defSlot = &def
		}
		return &coreir.NeutralExpr{Syntax: coreir.Branch[*coreir.NeutralExpr]{Cases: cases, Default: defSlot}}

	case coreir.Test[coreir.Expr]:
		return &coreir.NeutralExpr{Syntax: coreir.Test[*coreir.NeutralExpr]{Lhs: freeze(n.Lhs), Guard: n.Guard}}

	case coreir.CtorDef:
		return &coreir.NeutralExpr{Syntax: n}

	case coreir.CtorSaturated[coreir.Expr]:
		fields := make([]*coreir.NeutralExpr, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = freeze(f)
		}
		return &coreir.NeutralExpr{Syntax: coreir.CtorSaturated[*coreir.NeutralExpr]{Qual: n.Qual, Tag: n.Tag, Fields: fields}}

	case coreir.Fail:
		return &coreir.NeutralExpr{Syntax: n}

	default:
		panic(fmt.Sprintf("nbe: Freeze: unhandled syntax node %T", s))
	}
}
