// Package nbe implements the optimizer proper: evaluating core
// expressions into the semantic domain, quoting them back out with
// sharing-preserving smart constructors, and iterating the two to a
// fixed point.
package nbe

import (
	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/directive"
	"github.com/corefn-dev/nbeopt/internal/semantics"
)

// resumeState is the sibling cases/default a SemBranchTry left
// unexamined, threaded through Quote so that if the branch body it
// wraps turns out to itself need further case analysis (a nested match
// with no default of its own), that analysis can absorb them instead of
// losing them. nil means no pending resume is in effect.
type resumeState struct {
	cases []semantics.SemBranchCase
	def   func() semantics.Sem
}

// Ctx carries the state a single Quote/Build pass threads through: a
// level counter fresh across the whole pass (never reset per branch —
// two Ctx.Fresh calls must never return the same Level, which is what
// makes Level equality usable as identity), any inlining overrides in
// effect, and the resumeBranches state SemBranchTry/SemBranch hand off
// to each other.
type Ctx struct {
	next       *coreir.Level
	directives map[directive.EvalRef]directive.InlineDirective
	resume     *resumeState
}

// NewCtx starts a Ctx whose level counter begins at start — pass the
// outermost Env's NextLevel so fresh levels never collide with ones
// already bound in scope.
func NewCtx(start coreir.Level, directives map[directive.EvalRef]directive.InlineDirective) *Ctx {
	n := start
	return &Ctx{next: &n, directives: directives}
}

// withResume returns a copy of c with its resume state replaced by r
// (nil to clear it). The level counter and directives are shared with
// the original, since both must stay consistent across the whole pass.
func (c *Ctx) withResume(r *resumeState) *Ctx {
	out := *c
	out.resume = r
	return &out
}

// Fresh allocates and returns the next unused Level.
func (c *Ctx) Fresh() coreir.Level {
	lvl := *c.next
	*c.next++
	return lvl
}

// Directive returns the inlining override registered for ref, or the
// zero value (InlineDefault) if none was.
func (c *Ctx) Directive(ref directive.EvalRef) directive.InlineDirective {
	if c.directives == nil {
		return directive.Default()
	}
	return c.directives[ref]
}
