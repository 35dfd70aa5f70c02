package model

// Warning is a non-fatal observation accumulated while stripping a file.
type Warning struct {
	Path    Path
	Message string
}

// FileOutcome is the result of processing one file.
type FileOutcome struct {
	Path     Path
	Output   Path // destination the stripped text was routed to, if any
	Err      error
	Warnings []Warning
	// Empty is set when every item was stripped away.
	Empty bool
}

// Failed reports whether processing this file failed.
func (o FileOutcome) Failed() bool {
	return o.Err != nil
}

// RunResult aggregates the outcomes of a whole invocation.
type RunResult struct {
	Outcomes  []FileOutcome
	Processed int
	Failed    int
}

// FileEstimate holds per-file annotation counts for the list command.
type FileEstimate struct {
	Path   Path
	Counts AnnotationCounts
}

// AnnotationCounts tallies the strippable constructs found in one file.
type AnnotationCounts struct {
	SpecFunctions int // spec/proof/axiom mode functions
	Contracts     int // functions carrying at least one contract clause
	GhostParams   int
	GhostFields   int
	ProofStmts    int // proof blocks, assertions, quantifiers, proof macros
	GhostBindings int
}

// Total is the number of annotations that stripping would remove.
func (c AnnotationCounts) Total() int {
	return c.SpecFunctions + c.Contracts + c.GhostParams + c.GhostFields +
		c.ProofStmts + c.GhostBindings
}
