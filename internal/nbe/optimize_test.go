package nbe_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/corefn-dev/nbeopt/internal/nbe"
	"github.com/corefn-dev/nbeopt/internal/semantics"
	"github.com/corefn-dev/nbeopt/internal/wire"
)

func optimize(t *testing.T, jsonModule string) map[string]any {
	t.Helper()
	mod, err := wire.DecodeModule([]byte(jsonModule))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	evalExtern := mod.Table.ResolveFunc(nbe.Eval, mod.Name, nil)
	env := semantics.NewEnv(mod.Name, evalExtern)
	result := nbe.Optimize(env, mod.Expr, nil, 0)
	frozen, _ := nbe.Freeze(result)
	return wire.EncodeNeutral(frozen)
}

// let x = 1 in 2, with x unused in the body, never shows up: the dead
// binder is dropped entirely, leaving just the literal.
func TestOptimizeDropsDeadLet(t *testing.T) {
	out := optimize(t, `{
		"module": "m",
		"expr": {
			"kind": "let", "name": "x",
			"binding": {"kind": "lit", "lit": {"kind": "int", "int": 1}},
			"body": {"kind": "lit", "lit": {"kind": "int", "int": 2}}
		}
	}`)
	if out["kind"] != "lit" {
		t.Fatalf("expected dead let to reduce to its body, got %v", out)
	}
}

// (\x -> f x) eta-contracts to f when f doesn't itself mention x.
func TestOptimizeEtaContractsSingleParam(t *testing.T) {
	out := optimize(t, `{
		"module": "m",
		"expr": {
			"kind": "abs", "params": [{"name": "x"}],
			"body": {
				"kind": "app",
				"head": {"kind": "var", "qual": {"module": "m", "name": "f"}},
				"args": [{"kind": "local", "name": "x"}]
			}
		}
	}`)
	if out["kind"] != "var" {
		t.Fatalf("expected eta-contraction to leave a bare var, got %v", out)
	}
}

// A branch with no cases and only a default reduces straight to that
// default.
func TestOptimizeFlattensEmptyBranch(t *testing.T) {
	out := optimize(t, `{
		"module": "m",
		"expr": {
			"kind": "branch", "cases": [],
			"default": {"kind": "lit", "lit": {"kind": "int", "int": 7}}
		}
	}`)
	if out["kind"] != "lit" {
		t.Fatalf("expected empty branch to flatten to its default, got %v", out)
	}
}

// Running Optimize's output back through the pipeline a second time
// must not change it further: normalized terms are fixed points.
func TestOptimizeIsIdempotent(t *testing.T) {
	raw := `{
		"module": "m",
		"expr": {
			"kind": "let", "name": "x",
			"binding": {"kind": "lit", "lit": {"kind": "int", "int": 5}},
			"body": {"kind": "local", "name": "x"}
		}
	}`
	mod, err := wire.DecodeModule([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	evalExtern := mod.Table.ResolveFunc(nbe.Eval, mod.Name, nil)
	env := semantics.NewEnv(mod.Name, evalExtern)

	once := nbe.Optimize(env, mod.Expr, nil, 0)
	twice := nbe.Optimize(env, once, nil, 0)

	frozenOnce, _ := nbe.Freeze(once)
	frozenTwice, _ := nbe.Freeze(twice)
	if got, want := wire.EncodeNeutral(frozenOnce), wire.EncodeNeutral(frozenTwice); !cmp.Equal(got, want) {
		t.Fatalf("optimize is not idempotent:\n%s", cmp.Diff(want, got))
	}
}
