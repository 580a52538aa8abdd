package nbe

import (
	"fmt"
	"sort"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/diagnostics"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// Eval reduces expr to a semantic value under env. Rewrite nodes
// (Inline, LetAssoc) are transient forms the builder produces; Eval
// binds Inline's Binding directly into the environment (no SemLet is
// produced, so quoting substitutes it at each use) and folds LetAssoc
// into the same machinery as a chain of ordinary Lets.
func Eval(env semantics.Env, expr coreir.Expr) semantics.Sem {
	switch e := expr.(type) {
	case *coreir.ExprSyntax:
		return evalSyntax(env, e.Syntax)
	case *coreir.ExprRewrite:
		return evalRewrite(env, e.Rewrite)
	default:
		panic(fmt.Sprintf("nbe: Eval: unhandled Expr %T", expr))
	}
}

func evalRewrite(env semantics.Env, r coreir.Rewrite) semantics.Sem {
	switch n := r.(type) {
	case coreir.Inline:
		// Body still refers to Level; bind Binding there lazily so a
		// dead binding is never evaluated.
		binding := semantics.NewThunk(func() semantics.Sem { return Eval(env, n.Binding) })
		return Eval(env.Extend(binding), n.Body)
	case coreir.LetAssoc:
		return evalLetChain(env, n.Bindings, n.Body)
	default:
		panic(fmt.Sprintf("nbe: evalRewrite: unhandled Rewrite %T", r))
	}
}

func evalLetChain(env semantics.Env, bindings []coreir.LetAssocBinding, body coreir.Expr) semantics.Sem {
	if len(bindings) == 0 {
		return Eval(env, body)
	}
	b := bindings[0]
	bindingSem := Eval(env, b.Binding)
	return semantics.SemLet{
		Ident:   b.Ident,
		Binding: bindingSem,
		Cont: func(bound semantics.Sem) semantics.Sem {
			return evalLetChain(env.Extend(semantics.Ready(bound)), bindings[1:], body)
		},
	}
}

func identsOf(bindings []coreir.RecBinding[coreir.Expr]) []coreir.Ident {
	idents := make([]coreir.Ident, len(bindings))
	for i, b := range bindings {
		idents[i] = b.Ident
	}
	return idents
}

func groupMap(idents []coreir.Ident, thunks []*semantics.Thunk) map[coreir.Ident]*semantics.Thunk {
	m := make(map[coreir.Ident]*semantics.Thunk, len(idents))
	for i, id := range idents {
		m[id] = thunks[i]
	}
	return m
}

func readyAll(vals []semantics.Sem) []*semantics.Thunk {
	out := make([]*semantics.Thunk, len(vals))
	for i, v := range vals {
		out[i] = semantics.Ready(v)
	}
	return out
}

func evalSyntax(env semantics.Env, s coreir.Syntax[coreir.Expr]) semantics.Sem {
	switch n := s.(type) {
	case coreir.Var:
		if resolved, ok := env.EvalExtern(n.Qual, nil); ok {
			return resolved
		}
		return semantics.SemExtern{Qual: n.Qual}

	case coreir.Local:
		th, ok := env.Lookup(n.Level, n.Ident)
		if !ok {
			panic(diagnostics.Wrap(diagnostics.Eval(diagnostics.EVL001,
				fmt.Sprintf("unbound local at level %d", n.Level),
				map[string]any{"level": int(n.Level)})))
		}
		return th.Force()

	case coreir.LitNode[coreir.Expr]:
		return evalLiteral(env, n.Lit)

	case coreir.App[coreir.Expr]:
		head := Eval(env, n.Head)
		args := make([]*semantics.Thunk, len(n.Args))
		for i, a := range n.Args {
			a := a
			args[i] = semantics.NewThunk(func() semantics.Sem { return Eval(env, a) })
		}
		return evalApp(env, head, args)

	case coreir.Abs[coreir.Expr]:
		return buildLamChain(env, n.Params, n.Body)

	case coreir.Let[coreir.Expr]:
		bindingSem := Eval(env, n.Binding)
		return semantics.SemLet{
			Ident:   n.Ident,
			Binding: bindingSem,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return Eval(env.Extend(semantics.Ready(bound)), n.Body)
			},
		}

	case coreir.LetRec[coreir.Expr]:
		return evalLetRec(env, n)

	case coreir.EffectBind[coreir.Expr]:
		actionSem := Eval(env, n.Binding)
		return semantics.SemEffectBind{
			Ident:  n.Ident,
			Action: actionSem,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return Eval(env.Extend(semantics.Ready(bound)), n.Body)
			},
		}

	case coreir.EffectPure[coreir.Expr]:
		return semantics.SemEffectPure{Value: Eval(env, n.Value)}

	case coreir.AccessorNode[coreir.Expr]:
		return evalAccessor(env, Eval(env, n.Lhs), n.Acc)

	case coreir.Update[coreir.Expr]:
		base := Eval(env, n.Lhs)
		props := make([]semantics.SemUpdateProp, len(n.Props))
		for i, p := range n.Props {
			props[i] = semantics.SemUpdateProp{Key: p.Key, Value: Eval(env, p.Value)}
		}
		return evalUpdate(base, props)

	case coreir.Branch[coreir.Expr]:
		return evalBranch(env, n.Cases, n.Default)

	case coreir.Test[coreir.Expr]:
		return evalTest(Eval(env, n.Lhs), n.Guard)

	case coreir.CtorDef:
		return semantics.SemNeutral{Neutral: semantics.NeutCtorDef{Def: n}}

	case coreir.CtorSaturated[coreir.Expr]:
		fields := make([]*semantics.Thunk, len(n.Fields))
		for i, f := range n.Fields {
			f := f
			fields[i] = semantics.NewThunk(func() semantics.Sem { return Eval(env, f) })
		}
		return semantics.SemNeutral{Neutral: semantics.NeutData{Qual: n.Qual, Tag: n.Tag, Fields: fields}}

	case coreir.Fail:
		return semantics.SemNeutral{Neutral: semantics.NeutFail{Message: n.Message}}

	default:
		panic(fmt.Sprintf("nbe: evalSyntax: unhandled syntax node %T", s))
	}
}

func evalLiteral(env semantics.Env, lit coreir.Literal[coreir.Expr]) semantics.Sem {
	out := coreir.MapLiteral(lit, func(e coreir.Expr) semantics.Sem { return Eval(env, e) })
	return semantics.SemNeutral{Neutral: semantics.NeutLit{Lit: out}}
}

// buildLamChain right-folds an Abs's parameter list into nested,
// single-argument SemLam closures — the builder's Abs-of-Abs rewrite is
// what later re-merges the chain into one multi-param syntax node.
func buildLamChain(env semantics.Env, params []coreir.Param, body coreir.Expr) semantics.Sem {
	if len(params) == 0 {
		return Eval(env, body)
	}
	p := params[0]
	rest := params[1:]
	return semantics.SemLam{
		Ident: p.Ident,
		Apply: func(arg *semantics.Thunk) semantics.Sem {
			return buildLamChain(env.Extend(arg), rest, body)
		},
	}
}

func evalLetRec(env semantics.Env, n coreir.LetRec[coreir.Expr]) semantics.Sem {
	idents := identsOf(n.Bindings)
	return semantics.SemLetRec{
		Idents: idents,
		EvalBindings: func(thunks []*semantics.Thunk) []semantics.Sem {
			genv := env.ExtendGroup(groupMap(idents, thunks))
			vals := make([]semantics.Sem, len(n.Bindings))
			for i, b := range n.Bindings {
				vals[i] = Eval(genv, b.Value)
			}
			return vals
		},
		Cont: func(group []semantics.Sem) semantics.Sem {
			genv := env.ExtendGroup(groupMap(idents, readyAll(group)))
			return Eval(genv, n.Body)
		},
	}
}

// toNeutral commits a Sem to Neutral form where that's possible without
// losing information: SemNeutral unwraps directly, SemExtern replays
// its spine onto a base NeutVar, and SemEffectPure looks through to its
// already-known value. Forms that still carry a host closure or an
// unresolved binder/branch (SemLam, SemLet, SemLetRec, SemEffectBind,
// SemBranch, SemBranchTry, SemAccessor, SemUpdate) are not Neutral —
// encountering one where a Neutral is required means the program being
// optimized used a value where its shape forbids it (e.g. projecting a
// field out of a bare function), which is a producer bug, not a
// preserve-as-neutral case.
func toNeutral(s semantics.Sem) (semantics.Neutral, bool) {
	switch v := s.(type) {
	case semantics.SemNeutral:
		return v.Neutral, true
	case semantics.SemExtern:
		var n semantics.Neutral = semantics.NeutVar{Qual: v.Qual}
		for _, op := range v.Spine {
			switch o := op.(type) {
			case semantics.ExternApp:
				n = semantics.NeutApp{Head: n, Args: o.Args}
			case semantics.ExternAccessor:
				n = semantics.NeutAccessor{Base: n, Acc: o.Acc}
			}
		}
		return n, true
	case semantics.SemEffectPure:
		return toNeutral(v.Value)
	default:
		return nil, false
	}
}

// evalApp walks args left to right against head. Each argument stays a
// *Thunk until a SemLam actually binds it, so an argument a function
// never looks up is never forced — wrapping it in a naming SemLet first,
// the way an already-evaluated argument once was, would force it just to
// populate SemLet.Binding and defeat the point of deferring it.
func evalApp(env semantics.Env, head semantics.Sem, args []*semantics.Thunk) semantics.Sem {
	if len(args) == 0 {
		return head
	}
	switch h := head.(type) {
	case semantics.SemLam:
		arg := args[0]
		rest := args[1:]
		return evalApp(env, h.Apply(arg), rest)

	case semantics.SemExtern:
		spine := semantics.AppendApp(h.Spine, args)
		if resolved, ok := env.EvalExtern(h.Qual, spine); ok {
			return resolved
		}
		return semantics.SemExtern{Qual: h.Qual, Spine: spine}

	case semantics.SemLet:
		return semantics.SemLet{
			Ident:   h.Ident,
			Binding: h.Binding,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return semantics.SemLet{
					Binding: h.Cont(bound),
					Cont: func(fn semantics.Sem) semantics.Sem {
						return evalApp(env, fn, args)
					},
				}
			},
		}

	case semantics.SemNeutral:
		if inner, ok := h.Neutral.(semantics.NeutApp); ok {
			merged := append(append([]*semantics.Thunk{}, inner.Args...), args...)
			return semantics.SemNeutral{Neutral: semantics.NeutApp{Head: inner.Head, Args: merged}}
		}
		return semantics.SemNeutral{Neutral: semantics.NeutApp{Head: h.Neutral, Args: args}}

	default:
		n, ok := toNeutral(head)
		if !ok {
			panic(diagnostics.Wrap(diagnostics.Eval(diagnostics.EVL003,
				fmt.Sprintf("cannot apply a %T value", head),
				map[string]any{"head_type": fmt.Sprintf("%T", head)})))
		}
		return semantics.SemNeutral{Neutral: semantics.NeutApp{Head: n, Args: args}}
	}
}

func evalAccessor(env semantics.Env, base semantics.Sem, acc coreir.Accessor) semantics.Sem {
	switch b := base.(type) {
	case semantics.SemExtern:
		spine := semantics.AppendAccessor(b.Spine, acc)
		if resolved, ok := env.EvalExtern(b.Qual, spine); ok {
			return resolved
		}
		return semantics.SemExtern{Qual: b.Qual, Spine: spine}

	case semantics.SemLet:
		return semantics.SemLet{
			Ident:   b.Ident,
			Binding: b.Binding,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return semantics.SemLet{
					Binding: b.Cont(bound),
					Cont: func(lhs semantics.Sem) semantics.Sem {
						return evalAccessor(env, lhs, acc)
					},
				}
			},
		}

	case semantics.SemNeutral:
		switch n := b.Neutral.(type) {
		case semantics.NeutLit:
			if acc.Kind == coreir.AccProp && n.Lit.Kind == coreir.LitRecord {
				if v, ok := n.Lit.LookupProp(acc.Prop); ok {
					return v
				}
			}
			if acc.Kind == coreir.AccIndex && n.Lit.Kind == coreir.LitArray && acc.Index >= 0 && acc.Index < len(n.Lit.ArrayVal) {
				return n.Lit.ArrayVal[acc.Index]
			}
			return semantics.SemNeutral{Neutral: semantics.NeutAccessor{Base: n, Acc: acc}}
		case semantics.NeutData:
			if acc.Kind == coreir.AccOffset && acc.Index >= 0 && acc.Index < len(n.Fields) {
				return n.Fields[acc.Index].Force()
			}
			return semantics.SemNeutral{Neutral: semantics.NeutAccessor{Base: n, Acc: acc}}
		default:
			return semantics.SemNeutral{Neutral: semantics.NeutAccessor{Base: n, Acc: acc}}
		}

	default:
		if n, ok := toNeutral(base); ok {
			return semantics.SemNeutral{Neutral: semantics.NeutAccessor{Base: n, Acc: acc}}
		}
		return semantics.SemAccessor{Base: base, Acc: acc}
	}
}

// overlayRecord merges props onto lit's fields: a property named in
// props always wins over lit's own, and the result is sorted by key so
// record shape never depends on update order.
func overlayRecord(lit coreir.Literal[semantics.Sem], props []semantics.SemUpdateProp) coreir.Literal[semantics.Sem] {
	combined := make([]coreir.RecordProp[semantics.Sem], 0, len(props)+len(lit.RecordVal))
	for _, p := range props {
		combined = append(combined, coreir.RecordProp[semantics.Sem]{Key: p.Key, Value: p.Value})
	}
	combined = append(combined, lit.RecordVal...)

	seen := make(map[string]bool, len(combined))
	deduped := make([]coreir.RecordProp[semantics.Sem], 0, len(combined))
	for _, rp := range combined {
		if seen[rp.Key] {
			continue
		}
		seen[rp.Key] = true
		deduped = append(deduped, rp)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i].Key < deduped[j].Key })

	out := lit
	out.RecordVal = deduped
	return out
}

func evalUpdate(base semantics.Sem, props []semantics.SemUpdateProp) semantics.Sem {
	switch b := base.(type) {
	case semantics.SemLet:
		return semantics.SemLet{
			Ident:   b.Ident,
			Binding: b.Binding,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return evalUpdate(b.Cont(bound), props)
			},
		}

	case semantics.SemNeutral:
		if lit, ok := b.Neutral.(semantics.NeutLit); ok && lit.Lit.Kind == coreir.LitRecord {
			return semantics.SemNeutral{Neutral: semantics.NeutLit{Lit: overlayRecord(lit.Lit, props)}}
		}
		return semantics.SemNeutral{Neutral: semantics.NeutUpdate{Base: b.Neutral, Props: props}}

	default:
		if n, ok := toNeutral(base); ok {
			return semantics.SemNeutral{Neutral: semantics.NeutUpdate{Base: n, Props: props}}
		}
		return semantics.SemUpdate{Base: base, Props: props}
	}
}

func asBool(s semantics.Sem) (bool, bool) {
	if v, ok := s.(semantics.SemNeutral); ok {
		if lit, ok := v.Neutral.(semantics.NeutLit); ok && lit.Lit.Kind == coreir.LitBool {
			return lit.Lit.BoolVal, true
		}
	}
	return false, false
}

func boolSem(b bool) semantics.Sem {
	return semantics.SemNeutral{Neutral: semantics.NeutLit{Lit: coreir.Literal[semantics.Sem]{Kind: coreir.LitBool, BoolVal: b}}}
}

// branchArm is one not-yet-committed (predicate, body) pair, lazy in
// both halves so a predicate that's never reached (because an earlier
// arm already committed) is never forced.
type branchArm struct {
	pred func() semantics.Sem
	body func() semantics.Sem
}

func armsFromIR(env semantics.Env, cases []coreir.BranchCase[coreir.Expr]) []branchArm {
	arms := make([]branchArm, len(cases))
	for i, c := range cases {
		c := c
		arms[i] = branchArm{
			pred: func() semantics.Sem { return Eval(env, c.Pred) },
			body: func() semantics.Sem { return Eval(env, c.Body) },
		}
	}
	return arms
}

func armsFromSem(cases []semantics.SemBranchCase) []branchArm {
	arms := make([]branchArm, len(cases))
	for i, c := range cases {
		c := c
		arms[i] = branchArm{pred: func() semantics.Sem { return c.Pred }, body: c.Body}
	}
	return arms
}

func armsToSemCases(arms []branchArm) []semantics.SemBranchCase {
	cases := make([]semantics.SemBranchCase, len(arms))
	for i, a := range arms {
		cases[i] = semantics.SemBranchCase{Pred: a.pred(), Body: a.body}
	}
	return cases
}

func defThunk(env semantics.Env, def *coreir.Expr) func() semantics.Sem {
	if def == nil {
		return nil
	}
	return func() semantics.Sem { return Eval(env, *def) }
}

func evalBranch(env semantics.Env, cases []coreir.BranchCase[coreir.Expr], def *coreir.Expr) semantics.Sem {
	return runBranches(nil, armsFromIR(env, cases), defThunk(env, def))
}

// runBranches folds arms left to right: a stuck predicate joins acc, a
// known-false one is dropped, and a known-true one commits — unless its
// body itself reduced to an unresolved SemBranch, in which case that
// branch's own cases/default replace whatever arms remain (fully
// determined) or are appended after them (partial), so evaluation keeps going instead of
// committing prematurely.
func runBranches(acc []semantics.SemBranchCase, arms []branchArm, def func() semantics.Sem) semantics.Sem {
	if len(arms) == 0 {
		if len(acc) == 0 {
			if def != nil {
				return def()
			}
			return semantics.SemBranch{}
		}
		return semantics.SemBranch{Cases: acc, Default: def}
	}

	cur, tail := arms[0], arms[1:]
	predSem := cur.pred()
	known, ok := asBool(predSem)
	if !ok {
		next := append(append([]semantics.SemBranchCase{}, acc...), semantics.SemBranchCase{Pred: predSem, Body: cur.body})
		return runBranches(next, tail, def)
	}
	if !known {
		return runBranches(acc, tail, def)
	}

	bodySem := cur.body()
	if sb, ok := bodySem.(semantics.SemBranch); ok {
		if sb.Default != nil {
			return runBranches(acc, armsFromSem(sb.Cases), sb.Default)
		}
		merged := append(append([]branchArm{}, tail...), armsFromSem(sb.Cases)...)
		return runBranches(acc, merged, def)
	}

	tailCases := tail
	return semantics.SemBranch{
		Cases: acc,
		Default: func() semantics.Sem {
			return semantics.SemBranchTry{Body: bodySem, Cases: armsToSemCases(tailCases), Default: def}
		},
	}
}

func testLiteral(lit coreir.Literal[semantics.Sem], guard coreir.Guard) (bool, bool) {
	switch guard.Kind {
	case coreir.GuardInt:
		if lit.Kind == coreir.LitInt {
			return lit.IntVal == guard.IntVal, true
		}
	case coreir.GuardFloat:
		if lit.Kind == coreir.LitFloat {
			return lit.FloatVal == guard.FloatVal, true
		}
	case coreir.GuardString:
		if lit.Kind == coreir.LitString {
			return lit.StringVal == guard.StringVal, true
		}
	case coreir.GuardChar:
		if lit.Kind == coreir.LitChar {
			return lit.CharVal == guard.CharVal, true
		}
	case coreir.GuardBool:
		if lit.Kind == coreir.LitBool {
			return lit.BoolVal == guard.BoolVal, true
		}
	case coreir.GuardArrayLen:
		if lit.Kind == coreir.LitArray {
			return len(lit.ArrayVal) == guard.Len, true
		}
	}
	return false, false
}

func evalTest(lhs semantics.Sem, guard coreir.Guard) semantics.Sem {
	if l, ok := lhs.(semantics.SemLet); ok {
		return semantics.SemLet{
			Ident:   l.Ident,
			Binding: l.Binding,
			Cont: func(bound semantics.Sem) semantics.Sem {
				return evalTest(l.Cont(bound), guard)
			},
		}
	}
	if v, ok := lhs.(semantics.SemNeutral); ok {
		if lit, ok := v.Neutral.(semantics.NeutLit); ok {
			if b, known := testLiteral(lit.Lit, guard); known {
				return boolSem(b)
			}
		}
		if data, ok := v.Neutral.(semantics.NeutData); ok && guard.Kind == coreir.GuardTag {
			return boolSem(data.Tag == guard.Tag)
		}
	}
	n, ok := toNeutral(lhs)
	if !ok {
		panic(diagnostics.Wrap(diagnostics.Eval(diagnostics.EVL004,
			fmt.Sprintf("test scrutinee is not in neutral form: %T", lhs),
			map[string]any{"scrutinee_type": fmt.Sprintf("%T", lhs)})))
	}
	return semantics.SemNeutral{Neutral: semantics.NeutTest{Lhs: n, Guard: guard}}
}
