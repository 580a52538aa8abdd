package coreir

// Analyze computes the bottom-up Analysis for a syntax node from its
// children's already-computed analyses. Every *ExprSyntax built via
// NewExprSyntax must use the result of Analyze on its own Syntax value,
// or the analysis-consistency invariant (spec §8 property 2) breaks.
func Analyze(s Syntax[Expr]) Analysis {
	switch n := s.(type) {
	case Var:
		return Leaf(1, Deref)

	case Local:
		a := Leaf(1, Trivial)
		a.Usages[n.Level] = Usage{Count: 1}
		return a

	case LitNode[Expr]:
		return analyzeLiteral(n.Lit)

	case App[Expr]:
		parts := make([]Analysis, 0, len(n.Args)+1)
		parts = append(parts, n.Head.Analysis())
		for _, arg := range n.Args {
			parts = append(parts, arg.Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(NonTrivial)
		return out

	case Abs[Expr]:
		out := Captured(n.Body.Analysis())
		for _, p := range n.Params {
			out = Bound(p.Level, out)
		}
		out.Size++
		out.Complexity = NonTrivial
		out.Args = make([]ArgShape, len(n.Params))
		for i := range out.Args {
			out.Args[i] = ArgShapeKnown
		}
		return out

	case Let[Expr]:
		out := Combine(n.Binding.Analysis(), n.Body.Analysis())
		out = Bound(n.Level, out)
		out.Size++
		return out

	case LetRec[Expr]:
		parts := make([]Analysis, 0, len(n.Bindings)+1)
		for _, b := range n.Bindings {
			parts = append(parts, Captured(b.Value.Analysis()))
		}
		parts = append(parts, n.Body.Analysis())
		out := Combine(parts...)
		out = Bound(n.Level, out)
		out.Size++
		out.Complexity = out.Complexity.max(NonTrivial)
		return out

	case EffectBind[Expr]:
		out := Combine(n.Binding.Analysis(), n.Body.Analysis())
		out = Bound(n.Level, out)
		out.Size++
		out.Complexity = out.Complexity.max(NonTrivial)
		return out

	case EffectPure[Expr]:
		out := n.Value.Analysis()
		out.Size++
		return out

	case AccessorNode[Expr]:
		out := n.Lhs.Analysis()
		out.Size++
		out.Complexity = out.Complexity.max(Deref)
		return out

	case Update[Expr]:
		parts := make([]Analysis, 0, len(n.Props)+1)
		parts = append(parts, n.Lhs.Analysis())
		for _, p := range n.Props {
			parts = append(parts, p.Value.Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(NonTrivial)
		return out

	case Branch[Expr]:
		var parts []Analysis
		for _, c := range n.Cases {
			parts = append(parts, c.Pred.Analysis(), c.Body.Analysis())
		}
		if n.Default != nil {
			parts = append(parts, (*n.Default).Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(NonTrivial)
		return out

	case Test[Expr]:
		out := n.Lhs.Analysis()
		out.Size++
		out.Complexity = out.Complexity.max(Deref)
		return out

	case CtorDef:
		return Leaf(1+len(n.Fields), KnownSize)

	case CtorSaturated[Expr]:
		var parts []Analysis
		for _, f := range n.Fields {
			parts = append(parts, f.Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(KnownSize)
		return out

	case Fail:
		return Leaf(1, Trivial)

	default:
		panic("coreir: Analyze: unhandled syntax node")
	}
}

func analyzeLiteral(lit Literal[Expr]) Analysis {
	switch lit.Kind {
	case LitInt, LitFloat, LitString, LitChar, LitBool:
		return Leaf(1, Trivial)

	case LitArray:
		var parts []Analysis
		for _, e := range lit.ArrayVal {
			parts = append(parts, e.Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(KnownSize)
		return out

	case LitRecord:
		var parts []Analysis
		for _, p := range lit.RecordVal {
			parts = append(parts, p.Value.Analysis())
		}
		out := Combine(parts...)
		out.Size++
		out.Complexity = out.Complexity.max(KnownSize)
		return out

	default:
		panic("coreir: analyzeLiteral: unhandled literal kind")
	}
}
