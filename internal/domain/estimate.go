package domain

import (
	m "github.com/verus-tools/vstrip/internal/model"
	"github.com/verus-tools/vstrip/internal/verus"
)

// EstimateAnnotations parses one source text and counts the verification
// annotations a strip run would remove, without producing output.
func EstimateAnnotations(source string) (m.AnnotationCounts, error) {
	var counts m.AnnotationCounts

	unwrapped, err := verus.UnwrapBlocks(source)
	if err != nil {
		return counts, err
	}

	prog, err := verus.Parse(unwrapped)
	if err != nil {
		return counts, err
	}

	countItems(prog.Items, &counts)

	return counts, nil
}

func countItems(items []m.Item, counts *m.AnnotationCounts) {
	for _, it := range items {
		switch n := it.(type) {
		case *m.Function:
			if !n.Mode.Executable() {
				counts.SpecFunctions++
				continue
			}
			if !n.Contract.Empty() {
				counts.Contracts++
			}
			for _, p := range n.Params {
				if !p.Qualifier.Executable() {
					counts.GhostParams++
				}
			}
			if n.Body != nil {
				countBlock(n.Body, counts)
			}
		case *m.Struct:
			countFields(n.Fields, counts)
		case *m.Enum:
			for _, v := range n.Variants {
				countFields(v.Fields, counts)
			}
		case *m.Trait:
			countItems(n.Items, counts)
		case *m.Impl:
			countItems(n.Items, counts)
		case *m.Module:
			countItems(n.Items, counts)
		}
	}
}

func countFields(fields []m.Field, counts *m.AnnotationCounts) {
	for _, f := range fields {
		if !f.Qualifier.Executable() {
			counts.GhostFields++
		}
	}
}

func countBlock(b *m.Block, counts *m.AnnotationCounts) {
	for _, st := range b.Stmts {
		switch n := st.(type) {
		case *m.Binding:
			if !n.Qualifier.Executable() {
				counts.GhostBindings++
				continue
			}
			countChunks(n.Chunks, counts)
		case *m.ExprStmt:
			if n.Expr.Kind != m.ExprOpaque {
				counts.ProofStmts++
				continue
			}
			countChunks(n.Expr.Chunks, counts)
		case *m.MacroStmt:
			if verus.IsProofMacro(n.Name) {
				counts.ProofStmts++
				continue
			}
			countChunks(n.Chunks, counts)
		case *m.LoopStmt:
			if n.HeaderClauses != "" {
				counts.Contracts++
			}
			countBlock(n.Body, counts)
		case *m.OtherStmt:
			countChunks(n.Chunks, counts)
		}
	}
}

func countChunks(chunks []m.Chunk, counts *m.AnnotationCounts) {
	for _, c := range chunks {
		if c.Block != nil {
			countBlock(c.Block, counts)
		}
	}
}
