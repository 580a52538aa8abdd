package coreir

import "testing"

func TestCombineSumsUsagesAndSize(t *testing.T) {
	a := Use(Level(0))
	a.Size = 2
	a.Complexity = Trivial

	b := Use(Level(1))
	b.Size = 3
	b.Complexity = Deref

	out := Combine(a, b)

	if out.Size != 5 {
		t.Fatalf("Size = %d, want 5", out.Size)
	}
	if out.Complexity != Deref {
		t.Fatalf("Complexity = %v, want Deref", out.Complexity)
	}
	if out.UsageOf(Level(0)).Count != 1 || out.UsageOf(Level(1)).Count != 1 {
		t.Fatalf("usages not preserved: %+v", out.Usages)
	}
}

func TestCombineSumsRepeatedUsageOfSameLevel(t *testing.T) {
	out := Combine(Use(Level(0)), Use(Level(0)), Use(Level(0)))
	if got := out.UsageOf(Level(0)).Count; got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}

func TestBoundRemovesLevel(t *testing.T) {
	a := Combine(Use(Level(0)), Use(Level(1)))
	out := Bound(Level(0), a)

	if out.UsageOf(Level(0)).Count != 0 {
		t.Fatalf("level 0 still present: %+v", out.Usages)
	}
	if out.UsageOf(Level(1)).Count != 1 {
		t.Fatalf("level 1 dropped: %+v", out.Usages)
	}
}

func TestCapturedMarksAllUsages(t *testing.T) {
	a := Combine(Use(Level(0)), Use(Level(1)))
	out := Captured(a)

	for lvl, u := range out.Usages {
		if !u.Captured {
			t.Fatalf("level %v not marked captured", lvl)
		}
	}
}

func TestScaleMultipliesSizeAndCounts(t *testing.T) {
	a := Use(Level(0))
	a.Size = 4
	out := Scale(3, a)

	if out.Size != 12 {
		t.Fatalf("Size = %d, want 12", out.Size)
	}
	if got := out.UsageOf(Level(0)).Count; got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}

func TestScalePreservesCapturedFlag(t *testing.T) {
	a := Captured(Use(Level(0)))
	out := Scale(2, a)
	if !out.UsageOf(Level(0)).Captured {
		t.Fatal("Captured flag lost across Scale")
	}
}

func TestComplexityOrdering(t *testing.T) {
	if !(Trivial < Deref && Deref < KnownSize && KnownSize < NonTrivial) {
		t.Fatal("Complexity constants out of order")
	}
	if Trivial.max(NonTrivial) != NonTrivial {
		t.Fatal("max did not pick the larger complexity")
	}
	if NonTrivial.max(Trivial) != NonTrivial {
		t.Fatal("max not commutative in effect")
	}
}

func TestWithRewriteForcesFlag(t *testing.T) {
	a := Leaf(1, Trivial)
	if a.Rewrite {
		t.Fatal("fresh Leaf analysis should not have Rewrite set")
	}
	if !WithRewrite(a).Rewrite {
		t.Fatal("WithRewrite did not set the flag")
	}
}

func TestUsageOfUnusedLevelIsZero(t *testing.T) {
	a := Leaf(1, Trivial)
	u := a.UsageOf(Level(42))
	if u.Count != 0 || u.Captured {
		t.Fatalf("expected zero Usage, got %+v", u)
	}
}
