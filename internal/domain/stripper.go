package domain

import (
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
	"github.com/verus-tools/vstrip/internal/verus"
)

// StripOptions controls the parts of stripping that change the output text
// beyond plain removal.
type StripOptions struct {
	// SpecAsComments renders removed contract clauses as documentation
	// comments above the function they belonged to.
	SpecAsComments bool
}

// Stripper rewrites dialect source into plain executable source. It is
// stateless and safe for concurrent use.
type Stripper struct {
	opts StripOptions
}

// NewStripper creates a Stripper with the given options.
func NewStripper(opts StripOptions) *Stripper {
	return &Stripper{opts: opts}
}

// Strip runs the full pipeline on one source text: unwrap wrapper blocks,
// parse, rewrite, print. Warnings report recoverable oddities; the output is
// still usable when warnings are present.
func (s *Stripper) Strip(source string) (string, []string, error) {
	unwrapped, err := verus.UnwrapBlocks(source)
	if err != nil {
		return "", nil, err
	}

	prog, err := verus.Parse(unwrapped)
	if err != nil {
		return "", nil, err
	}

	var warnings []string

	prog.Items = s.stripItems(prog.Items, &warnings)
	prog.Items = sweepNonExecutable(prog.Items, &warnings)

	return verus.Print(prog), warnings, nil
}

// stripItems applies the retention policy to an item list, post-order:
// children are filtered before the parent's own decision is final.
func (s *Stripper) stripItems(items []m.Item, warnings *[]string) []m.Item {
	kept := items[:0]

	for _, it := range items {
		switch n := it.(type) {
		case *m.Function:
			if !n.Mode.Executable() {
				continue
			}
			s.stripFunction(n, warnings)
		case *m.Struct:
			n.Attrs = keepAttrs(n.Attrs)
			n.Fields, n.TrailingComma, n.FieldsTail = stripFields(n.Fields, n.TrailingComma, n.FieldsTail)
		case *m.Enum:
			n.Attrs = keepAttrs(n.Attrs)
			for i := range n.Variants {
				v := &n.Variants[i]
				v.Fields, v.TrailingComma, v.FieldsTail = stripFields(v.Fields, v.TrailingComma, v.FieldsTail)
			}
		case *m.Trait:
			n.Attrs = keepAttrs(n.Attrs)
			n.Items = s.stripItems(n.Items, warnings)
		case *m.Impl:
			n.Attrs = keepAttrs(n.Attrs)
			n.Items = s.stripItems(n.Items, warnings)
		case *m.Module:
			n.Attrs = keepAttrs(n.Attrs)
			n.Items = s.stripItems(n.Items, warnings)
		}

		kept = append(kept, it)
	}

	return kept
}

func (s *Stripper) stripFunction(fn *m.Function, warnings *[]string) {
	if s.opts.SpecAsComments && !fn.Contract.Empty() {
		fn.ContractDoc = renderContract(fn.Contract, fn.Public)
	}
	fn.Contract = m.ContractClauses{}
	fn.Attrs = keepAttrs(fn.Attrs)

	params := fn.Params[:0]
	for _, p := range fn.Params {
		if p.Qualifier.Executable() {
			params = append(params, p)
		}
	}
	if len(params) < len(fn.Params) && len(params) == 0 {
		fn.ParamsTrailingComma = false
		fn.ParamsTail = ""
	}
	fn.Params = params

	if fn.Body != nil {
		s.stripBlock(fn.Body, warnings)
	}
}

// stripFields removes ghost/tracked fields. When removal empties the list,
// the separator trivia collapses with it.
func stripFields(fields []m.Field, trailing bool, tail string) ([]m.Field, bool, string) {
	kept := fields[:0]

	for _, f := range fields {
		if f.Qualifier.Executable() {
			kept = append(kept, f)
		}
	}

	if len(kept) < len(fields) && len(kept) == 0 {
		return nil, false, ""
	}

	return kept, trailing, tail
}

func (s *Stripper) stripBlock(b *m.Block, warnings *[]string) {
	kept := b.Stmts[:0]

	for _, st := range b.Stmts {
		switch n := st.(type) {
		case *m.Binding:
			if !n.Qualifier.Executable() {
				continue
			}
			s.stripChunks(n.Chunks, warnings)
		case *m.ExprStmt:
			if n.Expr.Kind != m.ExprOpaque {
				continue
			}
			s.stripChunks(n.Expr.Chunks, warnings)
		case *m.MacroStmt:
			if verus.IsProofMacro(n.Name) {
				continue
			}
			s.stripChunks(n.Chunks, warnings)
		case *m.LoopStmt:
			if n.HeaderClauses != "" {
				n.Head = strings.TrimRight(n.Head, " \t\n\r") + " "
				n.HeaderClauses = ""
			}
			s.stripBlock(n.Body, warnings)
		case *m.OtherStmt:
			s.stripChunks(n.Chunks, warnings)
		}

		kept = append(kept, st)
	}

	b.Stmts = kept
}

func (s *Stripper) stripChunks(chunks []m.Chunk, warnings *[]string) {
	for _, c := range chunks {
		if c.Block != nil {
			s.stripBlock(c.Block, warnings)
		}
	}
}

// sweepNonExecutable is the defensive file-level pass: any non-executable
// function that survived the visitor is removed here and reported, so a
// missed path can never leak verification code into the output.
func sweepNonExecutable(items []m.Item, warnings *[]string) []m.Item {
	kept := items[:0]

	for _, it := range items {
		switch n := it.(type) {
		case *m.Function:
			if !n.Mode.Executable() {
				*warnings = append(*warnings, "late removal of non-executable function "+n.Name)
				continue
			}
		case *m.Trait:
			n.Items = sweepNonExecutable(n.Items, warnings)
		case *m.Impl:
			n.Items = sweepNonExecutable(n.Items, warnings)
		case *m.Module:
			n.Items = sweepNonExecutable(n.Items, warnings)
		}

		kept = append(kept, it)
	}

	return kept
}

// keepAttrs drops verifier-namespace attributes, which have no meaning once
// the verification annotations are gone.
func keepAttrs(attrs []m.Attribute) []m.Attribute {
	kept := attrs[:0]

	for _, a := range attrs {
		t := strings.TrimLeft(a.Text, "#![ \t")
		if strings.HasPrefix(t, "verifier") || strings.HasPrefix(t, "verus") {
			continue
		}

		kept = append(kept, a)
	}

	return kept
}
