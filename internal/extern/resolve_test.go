package extern

import (
	"testing"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/directive"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

func intLit(n int64) semantics.Sem {
	return semantics.SemNeutral{Neutral: semantics.NeutLit{Lit: coreir.Literal[semantics.Sem]{Kind: coreir.LitInt, IntVal: n}}}
}

func readyThunks(args ...semantics.Sem) []*semantics.Thunk {
	out := make([]*semantics.Thunk, len(args))
	for i, a := range args {
		out[i] = semantics.Ready(a)
	}
	return out
}

func asApp(args ...semantics.Sem) []semantics.ExternOp {
	return []semantics.ExternOp{semantics.ExternApp{Args: readyThunks(args...)}}
}

func noopEval(env semantics.Env, expr coreir.Expr) semantics.Sem {
	return nil
}

func TestTableRegisterAndLookup(t *testing.T) {
	table := NewTable()
	qual := coreir.NewQualified("M", "f")
	table.Register(qual, coreir.Leaf(3, coreir.NonTrivial), ImplCtor{Tag: "Pair", Fields: []coreir.Ident{coreir.NewIdent("a"), coreir.NewIdent("b")}})

	ai, ok := table.Lookup(qual)
	if !ok {
		t.Fatal("Lookup failed for a registered qual")
	}
	if _, ok := ai.Impl.(ImplCtor); !ok {
		t.Fatalf("Impl = %T, want ImplCtor", ai.Impl)
	}
}

func TestTableLookupMissingFails(t *testing.T) {
	table := NewTable()
	if _, ok := table.Lookup(coreir.NewQualified("M", "nope")); ok {
		t.Fatal("Lookup should fail for an unregistered qual")
	}
}

func TestEvalExternFromImplCtorSaturated(t *testing.T) {
	qual := coreir.NewQualified("M", "Pair")
	impl := ImplCtor{Tag: "Pair", Fields: []coreir.Ident{coreir.NewIdent("a"), coreir.NewIdent("b")}}
	ai := AnalysisImpl{Impl: impl}

	sem, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), qual, ai, asApp(intLit(1), intLit(2)))
	if !ok {
		t.Fatal("expected saturated constructor application to resolve")
	}
	data := sem.(semantics.SemNeutral).Neutral.(semantics.NeutData)
	if data.Tag != "Pair" || len(data.Fields) != 2 {
		t.Fatalf("unexpected data value: %+v", data)
	}
}

func TestEvalExternFromImplCtorUndersaturatedFails(t *testing.T) {
	qual := coreir.NewQualified("M", "Pair")
	impl := ImplCtor{Tag: "Pair", Fields: []coreir.Ident{coreir.NewIdent("a"), coreir.NewIdent("b")}}
	ai := AnalysisImpl{Impl: impl}

	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), qual, ai, asApp(intLit(1)))
	if ok {
		t.Fatal("expected an under-saturated constructor application to stay unresolved")
	}
}

func TestEvalExternFromImplExprEvaluatesBody(t *testing.T) {
	var captured semantics.Env
	eval := func(env semantics.Env, expr coreir.Expr) semantics.Sem {
		captured = env
		return intLit(42)
	}

	qual := coreir.NewQualified("M", "konst")
	param := coreir.NewIdent("x")
	impl := ImplExpr{Params: []coreir.Ident{param}, Body: nil}
	ai := AnalysisImpl{Impl: impl}

	sem, ok := EvalExternFromImpl(eval, semantics.NewEnv("M", nil), qual, ai, asApp(intLit(1)))
	if !ok {
		t.Fatal("expected saturated ImplExpr application to resolve")
	}
	if sem.(semantics.SemNeutral).Neutral.(semantics.NeutLit).Lit.IntVal != 42 {
		t.Fatalf("unexpected result: %+v", sem)
	}
	if captured.NextLevel() != 1 {
		t.Fatalf("body env has %d bound params, want 1", captured.NextLevel())
	}
}

func TestEvalExternFromImplExprZeroArgEvaluatesBodyDirectly(t *testing.T) {
	var captured semantics.Env
	eval := func(env semantics.Env, expr coreir.Expr) semantics.Sem {
		captured = env
		return intLit(7)
	}

	qual := coreir.NewQualified("M", "answer")
	impl := ImplExpr{Body: nil}
	ai := AnalysisImpl{Impl: impl}

	sem, ok := EvalExternFromImpl(eval, semantics.NewEnv("M", nil), qual, ai, nil)
	if !ok {
		t.Fatal("expected a zero-param ImplExpr with an empty spine to resolve")
	}
	if sem.(semantics.SemNeutral).Neutral.(semantics.NeutLit).Lit.IntVal != 7 {
		t.Fatalf("unexpected result: %+v", sem)
	}
	if captured.NextLevel() != 0 {
		t.Fatalf("body env has %d bound params, want 0", captured.NextLevel())
	}
}

func TestEvalExternFromImplExprProjectsRecordLiteralField(t *testing.T) {
	fieldExpr := &coreir.ExprSyntax{Syntax: coreir.LitNode[coreir.Expr]{Lit: coreir.Literal[coreir.Expr]{Kind: coreir.LitInt, IntVal: 9}}}
	bodyLit := &coreir.ExprSyntax{Syntax: coreir.LitNode[coreir.Expr]{Lit: coreir.Literal[coreir.Expr]{
		Kind:      coreir.LitRecord,
		RecordVal: []coreir.RecordProp[coreir.Expr]{{Key: "x", Value: fieldExpr}},
	}}}

	var capturedExpr coreir.Expr
	eval := func(env semantics.Env, expr coreir.Expr) semantics.Sem {
		capturedExpr = expr
		return intLit(9)
	}

	qual := coreir.NewQualified("M", "point")
	impl := ImplExpr{Body: bodyLit}
	ai := AnalysisImpl{Impl: impl}
	spine := []semantics.ExternOp{semantics.ExternAccessor{Acc: coreir.GetProp("x")}}

	sem, ok := EvalExternFromImpl(eval, semantics.NewEnv("M", nil), qual, ai, spine)
	if !ok {
		t.Fatal("expected projection of a field on a record-literal ImplExpr to resolve")
	}
	if capturedExpr != fieldExpr {
		t.Fatal("expected the matched record field's own expression to be evaluated")
	}
	if sem.(semantics.SemNeutral).Neutral.(semantics.NeutLit).Lit.IntVal != 9 {
		t.Fatalf("unexpected result: %+v", sem)
	}
}

func TestEvalExternFromImplExprProjectsUnknownFieldFails(t *testing.T) {
	bodyLit := &coreir.ExprSyntax{Syntax: coreir.LitNode[coreir.Expr]{Lit: coreir.Literal[coreir.Expr]{Kind: coreir.LitRecord}}}
	impl := ImplExpr{Body: bodyLit}
	ai := AnalysisImpl{Impl: impl}
	spine := []semantics.ExternOp{semantics.ExternAccessor{Acc: coreir.GetProp("missing")}}

	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "point"), ai, spine)
	if ok {
		t.Fatal("expected projection of an absent field to stay unresolved")
	}
}

func TestEvalExternFromImplExprExpensiveUndersuppliedCallDeclines(t *testing.T) {
	param := coreir.NewIdent("x")
	impl := ImplExpr{Params: []coreir.Ident{param}, Body: nil}
	ai := AnalysisImpl{Impl: impl, Analysis: coreir.Analysis{
		Complexity: coreir.NonTrivial,
		Size:       500,
		Args:       []coreir.ArgShape{coreir.ArgShapeKnown, coreir.ArgShapeKnown},
	}}

	qual := coreir.NewQualified("M", "heavy")
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), qual, ai, asApp(intLit(1)))
	if ok {
		t.Fatal("expected an expensive, under-supplied extern application to decline inlining")
	}
}

func TestTableResolveFuncHonorsNeverDirective(t *testing.T) {
	table := NewTable()
	qual := coreir.NewQualified("M", "heavy")
	table.Register(qual, coreir.Leaf(1, coreir.Trivial), ImplExpr{Params: []coreir.Ident{coreir.NewIdent("x")}, Body: nil})

	directives := map[directive.EvalRef]directive.InlineDirective{{Qual: qual}: directive.Never()}
	resolve := table.ResolveFunc(noopEval, "M", directives)

	_, ok := resolve(qual, asApp(intLit(1)))
	if ok {
		t.Fatal("expected a Never directive to block inlining even for a cheap body")
	}
}

func TestTableResolveFuncHonorsArityNDirective(t *testing.T) {
	eval := func(env semantics.Env, expr coreir.Expr) semantics.Sem { return intLit(1) }
	table := NewTable()
	qual := coreir.NewQualified("M", "twoArg")
	table.Register(qual, coreir.Leaf(1, coreir.Trivial), ImplExpr{
		Params: []coreir.Ident{coreir.NewIdent("a"), coreir.NewIdent("b")},
		Body:   nil,
	})

	directives := map[directive.EvalRef]directive.InlineDirective{{Qual: qual}: directive.ArityN(2)}
	resolve := table.ResolveFunc(eval, "M", directives)

	spine := []semantics.ExternOp{semantics.ExternApp{Args: readyThunks(intLit(1), intLit(2))}}
	if _, ok := resolve(qual, spine); !ok {
		t.Fatal("expected an ArityN(2) directive to allow inlining a fully-supplied call")
	}
}

func TestTableResolveFuncFallsBackToHeuristicByDefault(t *testing.T) {
	table := NewTable()
	qual := coreir.NewQualified("M", "konst")
	table.Register(qual, coreir.Leaf(1, coreir.Trivial), ImplExpr{Params: []coreir.Ident{coreir.NewIdent("x")}, Body: nil})

	resolve := table.ResolveFunc(func(env semantics.Env, expr coreir.Expr) semantics.Sem { return intLit(1) }, "M", nil)

	if _, ok := resolve(qual, asApp(intLit(1))); !ok {
		t.Fatal("expected an undirected, cheap extern application to resolve via the default heuristic")
	}
}

func TestEvalExternFromImplRecNeverResolves(t *testing.T) {
	ai := AnalysisImpl{Impl: ImplRec{Arity: 1}}
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "loop"), ai, asApp(intLit(1)))
	if ok {
		t.Fatal("ImplRec should never resolve to a value")
	}
}

func TestEvalExternFromImplDictInlinesSaturatedMethodCall(t *testing.T) {
	eval := func(env semantics.Env, expr coreir.Expr) semantics.Sem { return intLit(42) }
	ai := AnalysisImpl{Impl: ImplDict{Methods: map[string]DictMethod{
		"eq": {Params: []coreir.Ident{coreir.NewIdent("x")}, Body: nil},
	}}}

	spine := []semantics.ExternOp{
		semantics.ExternAccessor{Acc: coreir.GetProp("eq")},
		semantics.ExternApp{Args: readyThunks(intLit(1))},
	}
	sem, ok := EvalExternFromImpl(eval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "dictInst"), ai, spine)
	if !ok {
		t.Fatal("expected a projected-and-applied dict method to inline")
	}
	if sem.(semantics.SemNeutral).Neutral.(semantics.NeutLit).Lit.IntVal != 42 {
		t.Fatalf("unexpected result: %+v", sem)
	}
}

func TestEvalExternFromImplDictBareProjectionStaysStuck(t *testing.T) {
	ai := AnalysisImpl{Impl: ImplDict{Methods: map[string]DictMethod{
		"eq": {Params: []coreir.Ident{coreir.NewIdent("x")}, Body: nil},
	}}}

	spine := []semantics.ExternOp{semantics.ExternAccessor{Acc: coreir.GetProp("eq")}}
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "dictInst"), ai, spine)
	if ok {
		t.Fatal("expected a dict method projected but never applied to stay stuck")
	}
}

func TestEvalExternFromImplDictProjectionFollowedByAccessorStaysStuck(t *testing.T) {
	ai := AnalysisImpl{Impl: ImplDict{Methods: map[string]DictMethod{
		"p": {Body: nil},
	}}}

	spine := []semantics.ExternOp{
		semantics.ExternAccessor{Acc: coreir.GetProp("p")},
		semantics.ExternAccessor{Acc: coreir.GetProp("otherField")},
	}
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "dictInst"), ai, spine)
	if ok {
		t.Fatal("dict.p.otherField has no application following the first projection, must stay stuck")
	}
}

func TestEvalExternFromImplDictWrongArityStaysStuck(t *testing.T) {
	ai := AnalysisImpl{Impl: ImplDict{Methods: map[string]DictMethod{
		"eq": {Params: []coreir.Ident{coreir.NewIdent("a"), coreir.NewIdent("b")}, Body: nil},
	}}}

	spine := []semantics.ExternOp{
		semantics.ExternAccessor{Acc: coreir.GetProp("eq")},
		semantics.ExternApp{Args: readyThunks(intLit(1))},
	}
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "dictInst"), ai, spine)
	if ok {
		t.Fatal("expected an under-applied dict method call to stay stuck")
	}
}

func TestEvalExternFromImplDictUnknownMethodFails(t *testing.T) {
	ai := AnalysisImpl{Impl: ImplDict{Methods: map[string]DictMethod{}}}
	spine := []semantics.ExternOp{
		semantics.ExternAccessor{Acc: coreir.GetProp("missing")},
		semantics.ExternApp{Args: readyThunks(intLit(1))},
	}
	_, ok := EvalExternFromImpl(noopEval, semantics.NewEnv("M", nil), coreir.NewQualified("M", "dictInst"), ai, spine)
	if ok {
		t.Fatal("expected unknown method projection to stay unresolved")
	}
}
