package model

// Qualifier classifies parameters, fields and bindings by their runtime
// relevance. Ghost and tracked data exists only for verification and is
// erased from stripped output.
type Qualifier int

// Available Qualifier values.
const (
	QualifierExecutable Qualifier = iota
	QualifierGhost
	QualifierTracked
)

// Executable reports whether data with this qualifier survives stripping.
func (q Qualifier) Executable() bool {
	return q == QualifierExecutable
}

func (q Qualifier) String() string {
	switch q {
	case QualifierGhost:
		return "ghost"
	case QualifierTracked:
		return "tracked"
	default:
		return "exec"
	}
}

// Mode classifies functions and methods. Only executable functions are
// retained; every other mode is verification-only and removed wholesale.
type Mode int

// Available Mode values.
const (
	ModeExecutable Mode = iota
	ModeSpecification
	ModeSpecificationChecked
	ModeProof
	ModeProofAxiom
)

// Executable reports whether a function with this mode survives stripping.
func (m Mode) Executable() bool {
	return m == ModeExecutable
}

func (m Mode) String() string {
	switch m {
	case ModeSpecification:
		return "spec"
	case ModeSpecificationChecked:
		return "spec(checked)"
	case ModeProof:
		return "proof"
	case ModeProofAxiom:
		return "axiom"
	default:
		return "exec"
	}
}
