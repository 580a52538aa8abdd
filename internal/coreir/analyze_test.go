package coreir

import "testing"

func lit(kind LitKind) *ExprSyntax {
	l := Literal[Expr]{Kind: kind}
	switch kind {
	case LitInt:
		l.IntVal = 1
	case LitBool:
		l.BoolVal = true
	}
	n := LitNode[Expr]{Lit: l}
	return NewExprSyntax(n, Analyze(n))
}

func local(level Level) *ExprSyntax {
	n := Local{Level: level}
	return NewExprSyntax(n, Analyze(n))
}

func TestAnalyzeLiteralIsTrivial(t *testing.T) {
	a := lit(LitInt).Analysis()
	if a.Complexity != Trivial {
		t.Fatalf("Complexity = %v, want Trivial", a.Complexity)
	}
	if a.Size != 1 {
		t.Fatalf("Size = %d, want 1", a.Size)
	}
}

func TestAnalyzeVarIsDeref(t *testing.T) {
	n := Var{Qual: NewQualified("M", "f")}
	a := Analyze(n)
	if a.Complexity != Deref {
		t.Fatalf("Complexity = %v, want Deref", a.Complexity)
	}
	if len(a.Usages) != 0 {
		t.Fatalf("Var should carry no level usages, got %+v", a.Usages)
	}
}

func TestAnalyzeLocalRecordsUsage(t *testing.T) {
	a := local(Level(3)).Analysis()
	if a.Complexity != Trivial {
		t.Fatalf("Complexity = %v, want Trivial", a.Complexity)
	}
	if got := a.UsageOf(Level(3)).Count; got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
}

func TestAnalyzeAppCombinesHeadAndArgs(t *testing.T) {
	n := App[Expr]{Head: local(Level(0)), Args: []Expr{local(Level(1)), lit(LitInt)}}
	a := Analyze(n)

	if a.Complexity != NonTrivial {
		t.Fatalf("Complexity = %v, want NonTrivial", a.Complexity)
	}
	if a.UsageOf(Level(0)).Count != 1 || a.UsageOf(Level(1)).Count != 1 {
		t.Fatalf("usages not combined: %+v", a.Usages)
	}
	if a.Size != 1+1+1+1 {
		t.Fatalf("Size = %d, want 4", a.Size)
	}
}

func TestAnalyzeAbsCapturesBodyUsagesAndUnbindsParams(t *testing.T) {
	param := Level(5)
	outer := Level(1)
	body := local(outer)
	bodyApp := NewExprSyntax(App[Expr]{Head: body, Args: []Expr{local(param)}}, Analyze(App[Expr]{Head: body, Args: []Expr{local(param)}}))

	n := Abs[Expr]{Params: []Param{{Level: param}}, Body: bodyApp}
	a := Analyze(n)

	if _, ok := a.Usages[param]; ok {
		t.Fatalf("param level leaked into Abs's own analysis: %+v", a.Usages)
	}
	outerUsage, ok := a.Usages[outer]
	if !ok {
		t.Fatalf("outer level usage missing: %+v", a.Usages)
	}
	if !outerUsage.Captured {
		t.Fatal("usage of outer level from inside Abs body should be captured")
	}
	if a.Complexity != NonTrivial {
		t.Fatalf("Complexity = %v, want NonTrivial", a.Complexity)
	}
	if len(a.Args) != 1 || a.Args[0] != ArgShapeKnown {
		t.Fatalf("Args = %+v, want one ArgShapeKnown", a.Args)
	}
}

func TestAnalyzeLetDoesNotCaptureBodyUsages(t *testing.T) {
	level := Level(2)
	outer := Level(0)
	body := App[Expr]{Head: local(level), Args: []Expr{local(outer)}}
	n := Let[Expr]{Level: level, Binding: lit(LitInt), Body: NewExprSyntax(body, Analyze(body))}
	a := Analyze(n)

	if _, ok := a.Usages[level]; ok {
		t.Fatalf("bound level should not appear in Let's own analysis: %+v", a.Usages)
	}
	u, ok := a.Usages[outer]
	if !ok {
		t.Fatalf("outer level usage from the body missing: %+v", a.Usages)
	}
	if u.Captured {
		t.Fatal("usage of an outer level from a Let body should not be captured")
	}
}

func TestAnalyzeLetRecCapturesBindingUsagesNotBodyUsages(t *testing.T) {
	group := Level(10)
	outer := Level(0)
	binding := local(outer)
	n := LetRec[Expr]{
		Level:    group,
		Bindings: []RecBinding[Expr]{{Ident: NewIdent("f"), Level: group, Value: binding}},
		Body:     lit(LitBool),
	}
	a := Analyze(n)

	u, ok := a.Usages[outer]
	if !ok {
		t.Fatalf("expected outer usage from binding, got %+v", a.Usages)
	}
	if !u.Captured {
		t.Fatal("usage inside a LetRec binding should be captured")
	}
	if _, ok := a.Usages[group]; ok {
		t.Fatal("the recursive group's own level should not leak out")
	}
}

func TestAnalyzeCtorSaturatedIsAtLeastKnownSize(t *testing.T) {
	n := CtorSaturated[Expr]{Qual: NewQualified("M", "Pair"), Tag: "Pair", Fields: []Expr{lit(LitInt), lit(LitInt)}}
	a := Analyze(n)
	if a.Complexity < KnownSize {
		t.Fatalf("Complexity = %v, want at least KnownSize", a.Complexity)
	}
}

func TestAnalyzeFailIsTrivial(t *testing.T) {
	a := Analyze(Fail{Message: "boom"})
	if a.Complexity != Trivial {
		t.Fatalf("Complexity = %v, want Trivial", a.Complexity)
	}
}
