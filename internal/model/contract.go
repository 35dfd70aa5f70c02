package model

// InvariantsKind distinguishes the forms an invariants clause can take.
type InvariantsKind int

// Available InvariantsKind values.
const (
	// InvariantsAny permits opening any invariant.
	InvariantsAny InvariantsKind = iota
	// InvariantsNone permits opening no invariant.
	InvariantsNone
	// InvariantsList names an explicit bracketed list of invariants.
	InvariantsList
	// InvariantsSet gives a single set-valued expression.
	InvariantsSet
)

// InvariantsClause is the opens-invariants contract clause.
type InvariantsClause struct {
	Kind  InvariantsKind
	Exprs []string // list elements, or the single set expression
}

// UnwindClause is the no-unwind contract clause with an optional trigger
// condition.
type UnwindClause struct {
	When string
}

// ContractClauses holds the structured specification attached to a function
// signature. Expressions are opaque source fragments preserved for comment
// rendering; they are never interpreted.
type ContractClauses struct {
	Requires       []string
	Recommends     []string
	RecommendsVia  string
	Ensures        []string
	DefaultEnsures []string
	Returns        []string
	Invariants     *InvariantsClause
	Unwind         *UnwindClause
	// Decreases is parsed so idempotence holds but is never rendered.
	Decreases []string
}

// Empty reports whether no clause is present at all.
func (c ContractClauses) Empty() bool {
	return len(c.Requires) == 0 &&
		len(c.Recommends) == 0 &&
		c.RecommendsVia == "" &&
		len(c.Ensures) == 0 &&
		len(c.DefaultEnsures) == 0 &&
		len(c.Returns) == 0 &&
		c.Invariants == nil &&
		c.Unwind == nil &&
		len(c.Decreases) == 0
}
