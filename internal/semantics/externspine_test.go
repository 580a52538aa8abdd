package semantics

import (
	"testing"

	"github.com/corefn-dev/nbeopt/internal/coreir"
)

func lit(n int64) Sem {
	return SemNeutral{Neutral: NeutLit{Lit: coreir.Literal[Sem]{Kind: coreir.LitInt, IntVal: n}}}
}

func readyThunks(vals ...Sem) []*Thunk {
	out := make([]*Thunk, len(vals))
	for i, v := range vals {
		out[i] = Ready(v)
	}
	return out
}

func TestAppendAppCoalescesConsecutiveRuns(t *testing.T) {
	spine := AppendApp(nil, readyThunks(lit(1)))
	spine = AppendApp(spine, readyThunks(lit(2), lit(3)))

	if len(spine) != 1 {
		t.Fatalf("spine has %d ops, want 1 coalesced ExternApp", len(spine))
	}
	app, ok := spine[0].(ExternApp)
	if !ok {
		t.Fatalf("spine[0] = %T, want ExternApp", spine[0])
	}
	if len(app.Args) != 3 {
		t.Fatalf("Args has %d entries, want 3", len(app.Args))
	}
}

func TestAppendAccessorDoesNotCoalesceWithApp(t *testing.T) {
	spine := AppendApp(nil, readyThunks(lit(1)))
	spine = AppendAccessor(spine, coreir.GetProp("x"))
	spine = AppendApp(spine, readyThunks(lit(2)))

	if len(spine) != 3 {
		t.Fatalf("spine has %d ops, want 3 (app, accessor, app)", len(spine))
	}
	if _, ok := spine[1].(ExternAccessor); !ok {
		t.Fatalf("spine[1] = %T, want ExternAccessor", spine[1])
	}
	if app, ok := spine[2].(ExternApp); !ok || len(app.Args) != 1 {
		t.Fatalf("spine[2] = %#v, want a fresh single-arg ExternApp", spine[2])
	}
}

func TestAppendAppDoesNotMutateInputSlice(t *testing.T) {
	base := AppendApp(nil, readyThunks(lit(1)))
	_ = AppendApp(base, readyThunks(lit(2)))

	app := base[0].(ExternApp)
	if len(app.Args) != 1 {
		t.Fatalf("base spine mutated: now has %d args, want 1", len(app.Args))
	}
}

func TestArgCountSumsAcrossRuns(t *testing.T) {
	spine := AppendApp(nil, readyThunks(lit(1), lit(2)))
	spine = AppendAccessor(spine, coreir.GetProp("y"))
	spine = append(spine, ExternApp{Args: readyThunks(lit(3))})

	if got := ArgCount(spine); got != 3 {
		t.Fatalf("ArgCount = %d, want 3", got)
	}
}
