package model

// Block is a brace-delimited statement list.
type Block struct {
	Stmts []Stmt
	Tail  string // trivia between the last statement and the closing brace
}

// Stmt is a single statement inside a block.
type Stmt interface {
	stmt()
}

// Chunk is a run of statement text: either literal source or a nested block
// the visitor recurses into. Exactly one of the two fields is set.
type Chunk struct {
	Literal string
	Block   *Block
}

// Binding is a let statement. Ghost and tracked bindings are removed.
type Binding struct {
	Lead      string
	Qualifier Qualifier
	Chunks    []Chunk
}

// ExprKind classifies the expression wrapped by an expression statement.
// Every kind except ExprOpaque is verification-only.
type ExprKind int

// Available ExprKind values.
const (
	ExprOpaque ExprKind = iota
	ExprProofBlock
	ExprForall
	ExprExists
	ExprChoose
	ExprView
	ExprConjunction
	ExprDisjunction
	ExprImplies
	ExprImpliedBy
	ExprEquivalent
	ExprAssert
	ExprAssume
	ExprAssertForall
)

// Expression is the classified payload of an expression statement. Opaque
// expressions are recursed into for nested blocks but never removed
// themselves.
type Expression struct {
	Kind   ExprKind
	Chunks []Chunk
}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Lead string
	Expr Expression
}

// MacroStmt is a macro invocation in statement position, e.g. "proof! { .. }".
type MacroStmt struct {
	Lead   string
	Name   string
	Chunks []Chunk
}

// LoopStmt is a while/loop/for statement whose header may carry
// invariant/ensures/decreases clauses that must not reach the output.
type LoopStmt struct {
	Lead string
	Head string // keyword and condition, clauses excluded
	// HeaderClauses is the removed invariant/ensures/decreases header text.
	HeaderClauses string
	Body          *Block
}

// OtherStmt is any statement passed through structurally unchanged; nested
// blocks inside it are still visited.
type OtherStmt struct {
	Lead   string
	Chunks []Chunk
}

func (*Binding) stmt()   {}
func (*ExprStmt) stmt()  {}
func (*MacroStmt) stmt() {}
func (*LoopStmt) stmt()  {}
func (*OtherStmt) stmt() {}
