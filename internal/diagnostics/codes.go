// Package diagnostics provides the structured error-reporting types the
// optimizer's phases raise when they hit a condition spec §7 classifies
// as a producer error rather than a preserve-as-neutral one: malformed
// input the evaluator, builder, quoter, or extern resolver simply
// cannot make sense of.
package diagnostics

// Error code constants, one taxonomy per optimizer phase. Codes are
// opaque strings rather than an enum so they read directly out of a
// JSON report without a lookup table on the consuming end.
const (
	// Evaluator errors (EVL###) — raised by internal/nbe's Eval.

	// EVL001 indicates a Local referenced a de Bruijn level with no
	// entry in the environment, or named no member of the recursive
	// group at that level.
	EVL001 = "EVL001"

	// EVL003 indicates an application's head reduced to a value with no
	// neutral or closure form to apply against (a Branch, LetRec, or
	// effect sequencing point reached the application position directly).
	EVL003 = "EVL003"

	// EVL004 indicates a Test's scrutinee reduced to a value with no
	// neutral form (the same closed set of non-neutralizable shapes as
	// EVL003, reached from guard-testing position instead).
	EVL004 = "EVL004"

	// Builder errors (BLD###), for internal/nbe's Build.

	// BLD001 indicates Build was asked to reconstruct a syntax shape it
	// has no case for. Nothing in this tree raises it: Build's fallback
	// reaches coreir.Analyze, which panics with a plain message.
	BLD001 = "BLD001"

	// Quoter errors (QUO###) — raised by internal/nbe's Quote.

	// QUO001 indicates Quote was asked to reify a Sem variant it has no
	// case for. Nothing in this tree raises it: Quote's default case
	// panics with a plain message.
	QUO001 = "QUO001"

	// QUO002 indicates an unresolved SemExtern reached Quote without a
	// neutral fallback form (its spine replayed onto a NeutVar failed).
	QUO002 = "QUO002"

	// Optimizer-driver errors (OPT###) — raised by internal/nbe's
	// Optimize.

	// OPT001 indicates the fixed-point loop hit its iteration cap
	// without the rewrite flag ever clearing, suggesting a builder rule
	// that flags work as pending without ever resolving it.
	OPT001 = "OPT001"

	// Extern-resolution errors (EXT###), for internal/extern.

	// EXT001 indicates a qualified reference had no registered
	// implementation in the table it was looked up against. Nothing in
	// this tree raises it: an unregistered reference makes the lookup
	// decline and stays a stuck neutral.
	EXT001 = "EXT001"
)
