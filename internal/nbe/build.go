package nbe

import "github.com/corefn-dev/nbeopt/internal/coreir"

// Build is the smart constructor the quoter calls for every syntax node
// it reconstructs. Most nodes pass straight through to a plain
// ExprSyntax, analysed bottom-up; a handful of shapes get rewritten
// instead, either flattened into a form later passes can see through
// (App-of-App, Abs-of-Abs, Let-of-Let, Branch-of-Branch) or replaced
// outright when duplicating a binding is clearly worth it (Inline) or
// clearly free (eta-contraction).
func Build(s coreir.Syntax[coreir.Expr]) coreir.Expr {
	switch n := s.(type) {
	case coreir.App[coreir.Expr]:
		if hd, tl1, ok := asApp(n.Head); ok {
			return Build(coreir.App[coreir.Expr]{Head: hd, Args: append(append([]coreir.Expr{}, tl1...), n.Args...)})
		}
		return plain(n)

	case coreir.Abs[coreir.Expr]:
		if p2, body, ok := asAbs(n.Body); ok {
			return Build(coreir.Abs[coreir.Expr]{Params: append(append([]coreir.Param{}, n.Params...), p2...), Body: body})
		}
		if hd, ok := etaContract(n); ok {
			return hd
		}
		return plain(n)

	case coreir.Let[coreir.Expr]:
		return buildLet(n)

	case coreir.Branch[coreir.Expr]:
		if len(n.Cases) == 0 && n.Default != nil {
			return *n.Default
		}
		if n.Default != nil {
			if inner, ok := asBranch(*n.Default); ok {
				return Build(coreir.Branch[coreir.Expr]{
					Cases:   append(append([]coreir.BranchCase[coreir.Expr]{}, n.Cases...), inner.Cases...),
					Default: inner.Default,
				})
			}
		}
		return plain(n)

	default:
		return plain(n)
	}
}

func plain(s coreir.Syntax[coreir.Expr]) coreir.Expr {
	return coreir.NewExprSyntax(s, coreir.Analyze(s))
}

// exprSyntax unwraps e's underlying syntax node, if e is an ordinary
// (not-yet-rewritten) node. Rewrite nodes (Inline, LetAssoc) never
// match the structural rewrites below — they've already been folded.
func exprSyntax(e coreir.Expr) (coreir.Syntax[coreir.Expr], bool) {
	s, ok := e.(*coreir.ExprSyntax)
	if !ok {
		return nil, false
	}
	return s.Syntax, true
}

func asApp(e coreir.Expr) (coreir.Expr, []coreir.Expr, bool) {
	s, ok := exprSyntax(e)
	if !ok {
		return nil, nil, false
	}
	app, ok := s.(coreir.App[coreir.Expr])
	if !ok {
		return nil, nil, false
	}
	return app.Head, app.Args, true
}

func asAbs(e coreir.Expr) ([]coreir.Param, coreir.Expr, bool) {
	s, ok := exprSyntax(e)
	if !ok {
		return nil, nil, false
	}
	abs, ok := s.(coreir.Abs[coreir.Expr])
	if !ok {
		return nil, nil, false
	}
	return abs.Params, abs.Body, true
}

func asBranch(e coreir.Expr) (coreir.Branch[coreir.Expr], bool) {
	s, ok := exprSyntax(e)
	if !ok {
		return coreir.Branch[coreir.Expr]{}, false
	}
	br, ok := s.(coreir.Branch[coreir.Expr])
	return br, ok
}

func asLocal(e coreir.Expr) (coreir.Local, bool) {
	s, ok := exprSyntax(e)
	if !ok {
		return coreir.Local{}, false
	}
	loc, ok := s.(coreir.Local)
	return loc, ok
}

// isReference reports whether e is, syntactically, an atomic reference
// to a binding — a Var or a Local — rather than a compound expression.
// Eta-contraction only fires against a reference: collapsing Abs x ->
// f x to f is sound regardless of what f is bound to, but collapsing it
// to an arbitrary expression could duplicate or reorder its effects.
func isReference(e coreir.Expr) bool {
	s, ok := exprSyntax(e)
	if !ok {
		return false
	}
	switch s.(type) {
	case coreir.Var, coreir.Local:
		return true
	default:
		return false
	}
}

// etaContract recognizes Abs[(_, l)] (App hd [Local _ l]) — a single
// parameter passed as the sole argument of an application headed by a
// bare reference — and collapses it to hd, provided hd
// doesn't itself mention l (so removing the binder changes nothing
// observable).
func etaContract(n coreir.Abs[coreir.Expr]) (coreir.Expr, bool) {
	if len(n.Params) != 1 {
		return nil, false
	}
	level := n.Params[0].Level
	hd, args, ok := asApp(n.Body)
	if !ok || len(args) != 1 {
		return nil, false
	}
	loc, ok := asLocal(args[0])
	if !ok || loc.Level != level {
		return nil, false
	}
	if !isReference(hd) {
		return nil, false
	}
	if u, present := hd.Analysis().Usages[level]; present && u.Count > 0 {
		return nil, false
	}
	return hd, true
}

func buildLet(n coreir.Let[coreir.Expr]) coreir.Expr {
	if i2, l2, b2, body2, ok := asLet(n.Binding); ok {
		return buildLetAssoc([]coreir.LetAssocBinding{
			{Ident: i2, Level: l2, Binding: b2},
			{Ident: n.Ident, Level: n.Level, Binding: body2},
		}, n.Body)
	}

	if bs, body2, ok := asLetAssoc(n.Binding); ok {
		return buildLetAssoc(append(append([]coreir.LetAssocBinding{}, bs...), coreir.LetAssocBinding{
			Ident: n.Ident, Level: n.Level, Binding: body2,
		}), n.Body)
	}

	if shouldInlineLet(n.Level, n.Binding, n.Body) {
		return buildInline(n.Ident, n.Level, n.Binding, n.Body)
	}

	return plain(n)
}

func asLet(e coreir.Expr) (*coreir.Ident, coreir.Level, coreir.Expr, coreir.Expr, bool) {
	s, ok := exprSyntax(e)
	if !ok {
		return nil, 0, nil, nil, false
	}
	let, ok := s.(coreir.Let[coreir.Expr])
	if !ok {
		return nil, 0, nil, nil, false
	}
	return let.Ident, let.Level, let.Binding, let.Body, true
}

func asLetAssoc(e coreir.Expr) ([]coreir.LetAssocBinding, coreir.Expr, bool) {
	r, ok := e.(*coreir.ExprRewrite)
	if !ok {
		return nil, nil, false
	}
	la, ok := r.Rewrite.(coreir.LetAssoc)
	if !ok {
		return nil, nil, false
	}
	return la.Bindings, la.Body, true
}

func buildLetAssoc(bindings []coreir.LetAssocBinding, body coreir.Expr) coreir.Expr {
	return coreir.NewExprRewrite(coreir.LetAssoc{Bindings: bindings, Body: body}, analyzeLetChain(bindings, body))
}

// analyzeLetChain recomputes the Analysis a right-leaning nest of Lets
// (one per binding, the first binding outermost) would have had, without actually
// rebuilding that nest — LetAssoc exists precisely so later passes
// don't have to.
func analyzeLetChain(bindings []coreir.LetAssocBinding, body coreir.Expr) coreir.Analysis {
	acc := body.Analysis()
	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		acc = coreir.Combine(b.Binding.Analysis(), acc)
		acc = coreir.Bound(b.Level, acc)
		acc.Size++
	}
	return acc
}

func buildInline(ident *coreir.Ident, level coreir.Level, binding, body coreir.Expr) coreir.Expr {
	a := binding.Analysis()
	b := body.Analysis()
	count := 0
	if u, present := b.Usages[level]; present {
		count = u.Count
	}
	combined := coreir.Bound(level, coreir.Combine(b, coreir.Scale(count, a)))
	return coreir.NewExprRewrite(coreir.Inline{Ident: ident, Level: level, Binding: binding, Body: body}, combined)
}

// shouldInlineLet decides whether a let's binding should be duplicated
// at its use site rather than kept as a binder: a dead binding is
// dropped outright, a cheap-to-duplicate one is inlined unconditionally,
// a single non-captured use is inlined since there's nothing to share,
// a captured-or-multiply-used but still-small-and-shallow one is
// inlined on the same cost grounds, and a function binding is inlined
// whenever it isn't both free-level-referencing and large (duplicating
// a closure that doesn't capture anything is always free).
func shouldInlineLet(level coreir.Level, binding, body coreir.Expr) bool {
	a := binding.Analysis()
	b := body.Analysis()

	u, present := b.Usages[level]
	if !present {
		return true
	}
	if a.Complexity == coreir.Trivial && a.Size < 5 {
		return true
	}
	if !u.Captured && (u.Count == 1 || (a.Complexity <= coreir.Deref && a.Size < 5)) {
		return true
	}
	if _, _, ok := asAbs(binding); ok {
		if len(a.Usages) == 0 || a.Size < 128 {
			return true
		}
	}
	return false
}
