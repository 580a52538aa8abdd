package semantics

import (
	"testing"

	"github.com/corefn-dev/nbeopt/internal/coreir"
)

func TestEnvExtendAssignsSequentialLevels(t *testing.T) {
	env := NewEnv(coreir.NewModuleName("M"), nil)
	if env.NextLevel() != 0 {
		t.Fatalf("NextLevel = %d, want 0", env.NextLevel())
	}

	env = env.Extend(Ready(lit(1)))
	if env.NextLevel() != 1 {
		t.Fatalf("NextLevel = %d, want 1", env.NextLevel())
	}

	env = env.Extend(Ready(lit(2)))
	if env.NextLevel() != 2 {
		t.Fatalf("NextLevel = %d, want 2", env.NextLevel())
	}
}

func TestEnvLookupResolvesSingleBinder(t *testing.T) {
	env := NewEnv(coreir.NewModuleName("M"), nil)
	env = env.Extend(Ready(lit(7)))

	th, ok := env.Lookup(coreir.Level(0), nil)
	if !ok {
		t.Fatal("Lookup failed for a level within range")
	}
	got, ok := th.Force().(SemNeutral)
	if !ok {
		t.Fatalf("Force() = %T, want SemNeutral", th.Force())
	}
	neut, ok := got.Neutral.(NeutLit)
	if !ok || neut.Lit.IntVal != 7 {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestEnvLookupOutOfRangeFails(t *testing.T) {
	env := NewEnv(coreir.NewModuleName("M"), nil)
	if _, ok := env.Lookup(coreir.Level(0), nil); ok {
		t.Fatal("Lookup should fail on an empty environment")
	}
}

func TestEnvLookupGroupRequiresIdent(t *testing.T) {
	fIdent := coreir.NewIdent("f")
	gIdent := coreir.NewIdent("g")
	env := NewEnv(coreir.NewModuleName("M"), nil)
	env = env.ExtendGroup(map[coreir.Ident]*Thunk{
		fIdent: Ready(lit(1)),
		gIdent: Ready(lit(2)),
	})

	if _, ok := env.Lookup(coreir.Level(0), nil); ok {
		t.Fatal("Lookup into a group without an ident should fail")
	}

	th, ok := env.Lookup(coreir.Level(0), &gIdent)
	if !ok {
		t.Fatal("Lookup by ident into a group should succeed")
	}
	val := th.Force().(SemNeutral).Neutral.(NeutLit)
	if val.Lit.IntVal != 2 {
		t.Fatalf("resolved wrong group member: got %d, want 2", val.Lit.IntVal)
	}
}

func TestEnvExtendIsImmutable(t *testing.T) {
	base := NewEnv(coreir.NewModuleName("M"), nil)
	base = base.Extend(Ready(lit(1)))

	branchA := base.Extend(Ready(lit(2)))
	branchB := base.Extend(Ready(lit(3)))

	thA, _ := branchA.Lookup(coreir.Level(1), nil)
	thB, _ := branchB.Lookup(coreir.Level(1), nil)

	if thA.Force().(SemNeutral).Neutral.(NeutLit).Lit.IntVal != 2 {
		t.Fatal("branchA's level 1 leaked branchB's extension")
	}
	if thB.Force().(SemNeutral).Neutral.(NeutLit).Lit.IntVal != 3 {
		t.Fatal("branchB's level 1 leaked branchA's extension")
	}
}
