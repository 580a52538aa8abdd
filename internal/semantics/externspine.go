package semantics

import "github.com/corefn-dev/nbeopt/internal/coreir"

// ExternOp is one operation accumulated onto a SemExtern's spine.
type ExternOp interface{ externOpNode() }

// ExternApp is a run of arguments applied to the extern in one step.
// AppendApp coalesces consecutive applications into a single ExternApp
// so a curried call site (f a)(b)(c) accumulates as one three-argument
// run rather than three nested single-argument ones, matching the
// App-of-App flattening the builder performs on ordinary IR. Args are
// *Thunk so an extern that declines to inline (or never uses one of its
// arguments) never forces it.
type ExternApp struct{ Args []*Thunk }

func (ExternApp) externOpNode() {}

// ExternAccessor is a field projection applied to the extern's result.
type ExternAccessor struct{ Acc coreir.Accessor }

func (ExternAccessor) externOpNode() {}

// AppendApp appends args to spine, merging into a trailing ExternApp
// when one is already there.
func AppendApp(spine []ExternOp, args []*Thunk) []ExternOp {
	if n := len(spine); n > 0 {
		if last, ok := spine[n-1].(ExternApp); ok {
			merged := make([]*Thunk, 0, len(last.Args)+len(args))
			merged = append(merged, last.Args...)
			merged = append(merged, args...)
			out := make([]ExternOp, n)
			copy(out, spine)
			out[n-1] = ExternApp{Args: merged}
			return out
		}
	}
	return append(append([]ExternOp{}, spine...), ExternApp{Args: args})
}

// AppendAccessor appends a field projection onto spine.
func AppendAccessor(spine []ExternOp, acc coreir.Accessor) []ExternOp {
	return append(append([]ExternOp{}, spine...), ExternAccessor{Acc: acc})
}

// ArgCount returns the total number of arguments applied across every
// ExternApp run in spine. The resolvers in internal/extern do not call
// it: they require the spine to be exactly one ExternApp run.
func ArgCount(spine []ExternOp) int {
	n := 0
	for _, op := range spine {
		if app, ok := op.(ExternApp); ok {
			n += len(app.Args)
		}
	}
	return n
}
