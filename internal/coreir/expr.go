package coreir

// Expr is a term of the IR the optimizer works over: either a plain
// syntax node (ExprSyntax) or a transient rewrite marker (ExprRewrite)
// produced mid-optimization by the builder. Rewrite nodes never survive
// past Freeze (see internal/nbe).
//
// Invariant: for every *ExprSyntax in a well-formed tree, Analysis()
// equals the Analysis that Analyze would compute from its current
// children — nodes are built bottom-up and never mutated in place.
type Expr interface {
	Analysis() Analysis
	exprNode()
}

// ExprSyntax is an ordinary IR node: a Syntax shape decorated with the
// analysis computed from its children.
type ExprSyntax struct {
	A      Analysis
	Syntax Syntax[Expr]
}

func (e *ExprSyntax) Analysis() Analysis { return e.A }
func (*ExprSyntax) exprNode()            {}

// NewExprSyntax wraps s with the analysis a. It does not compute or
// check a itself: the analysis-consistency invariant holds only when
// callers pass Analyze(s), as every caller in this tree does.
func NewExprSyntax(s Syntax[Expr], a Analysis) *ExprSyntax {
	return &ExprSyntax{A: a, Syntax: s}
}

// Inline is the rewrite form of a Let whose binding the builder decided
// to expand at its use site: Body still references Level (evaluation
// binds Binding there), and A records the simulated inlined cost
// instead of a fresh let's.
type Inline struct {
	Ident   *Ident
	Level   Level
	Binding Expr
	Body    Expr
}

func (Inline) rewriteNode() {}

// LetAssocBinding is one flattened member of a LetAssoc chain.
type LetAssocBinding struct {
	Ident   *Ident
	Level   Level
	Binding Expr
}

// LetAssoc is the rewrite form produced by re-associating nested lets
// so the builder can see past one binder into the next without
// rebuilding the whole chain on every pass.
type LetAssoc struct {
	Bindings []LetAssocBinding
	Body     Expr
}

func (LetAssoc) rewriteNode() {}

// Rewrite is the sum type of transient rewrite markers.
type Rewrite interface {
	rewriteNode()
}

// ExprRewrite wraps a transient Rewrite node. The fixed-point driver
// re-evaluates whenever one of these is created; Freeze removes them.
type ExprRewrite struct {
	A       Analysis
	Rewrite Rewrite
}

func (e *ExprRewrite) Analysis() Analysis { return e.A }
func (*ExprRewrite) exprNode()            {}

// NewExprRewrite wraps r with the analysis flag forced on, since
// creating a rewrite node is itself what drives another optimizer pass.
func NewExprRewrite(r Rewrite, a Analysis) *ExprRewrite {
	return &ExprRewrite{A: WithRewrite(a), Rewrite: r}
}

// NeutralExpr is the pure, rewrite-free IR that Freeze produces for
// downstream consumers (the code generator). Unlike Expr it carries no
// per-node analysis of its own — Freeze returns the top-level analysis
// separately, and nothing downstream needs per-subtree metadata.
type NeutralExpr struct {
	Syntax Syntax[*NeutralExpr]
}
