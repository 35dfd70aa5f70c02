package verus

import (
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
)

// Print renders a Program back to source. Opaque spans reproduce their input
// bytes exactly; rewritten nodes splice their retained pieces back together,
// so untouched files round-trip byte for byte.
func Print(p *m.Program) string {
	var b strings.Builder

	printItems(&b, p.Items)

	return b.String()
}

func printItems(b *strings.Builder, items []m.Item) {
	for _, it := range items {
		switch n := it.(type) {
		case *m.Opaque:
			b.WriteString(n.Text)
		case *m.Function:
			printFunction(b, n)
		case *m.Struct:
			printStruct(b, n)
		case *m.Enum:
			printEnum(b, n)
		case *m.Trait:
			printContainer(b, n.Lead, n.Attrs, n.Head, n.Items)
		case *m.Impl:
			printContainer(b, n.Lead, n.Attrs, n.Head, n.Items)
		case *m.Module:
			printContainer(b, n.Lead, n.Attrs, n.Head, n.Items)
		}
	}
}

func printAttrs(b *strings.Builder, attrs []m.Attribute) {
	for _, a := range attrs {
		b.WriteString(a.Text)
		b.WriteString(a.After)
	}
}

func printFunction(b *strings.Builder, fn *m.Function) {
	b.WriteString(fn.Lead)

	indent := lastLineIndent(fn.Lead)
	for _, line := range fn.ContractDoc {
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(indent)
	}

	printAttrs(b, fn.Attrs)

	b.WriteString(fn.Head)
	b.WriteString("fn ")
	b.WriteString(fn.Name)
	b.WriteString(fn.Generics)
	b.WriteString("(")

	for i, p := range fn.Params {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(p.Text)
	}
	if fn.ParamsTrailingComma && len(fn.Params) > 0 {
		b.WriteString(",")
		b.WriteString(fn.ParamsTail)
	}

	b.WriteString(")")

	tail := strings.TrimRight(fn.Tail, " \t\n\r")
	b.WriteString(tail)

	if fn.Body == nil {
		b.WriteString(";")
		return
	}

	b.WriteString(" ")
	printBlock(b, fn.Body)
}

// lastLineIndent returns the whitespace of the final line of lead, used to
// align synthesized documentation lines with the item they describe.
func lastLineIndent(lead string) string {
	i := strings.LastIndexByte(lead, '\n')
	line := lead[i+1:]

	for j := 0; j < len(line); j++ {
		if line[j] != ' ' && line[j] != '\t' {
			return line[:j]
		}
	}

	return line
}

func printFields(b *strings.Builder, open, closing string, fields []m.Field, trailing bool, tail string) {
	b.WriteString(open)

	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(f.Text)
	}
	if len(fields) > 0 {
		if trailing {
			b.WriteString(",")
		}
		b.WriteString(tail)
	}

	b.WriteString(closing)
}

func printStruct(b *strings.Builder, s *m.Struct) {
	b.WriteString(s.Lead)
	printAttrs(b, s.Attrs)
	b.WriteString(s.Head)

	switch s.Style {
	case m.FieldsNamed:
		printFields(b, "{", "}", s.Fields, s.TrailingComma, s.FieldsTail)
	case m.FieldsTuple:
		printFields(b, "(", ")", s.Fields, s.TrailingComma, s.FieldsTail)
	}

	b.WriteString(s.After)
}

func printEnum(b *strings.Builder, e *m.Enum) {
	b.WriteString(e.Lead)
	printAttrs(b, e.Attrs)
	b.WriteString(e.Head)
	b.WriteString("{")

	for i, v := range e.Variants {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(v.Head)

		switch v.Style {
		case m.FieldsNamed:
			printFields(b, "{", "}", v.Fields, v.TrailingComma, v.FieldsTail)
		case m.FieldsTuple:
			printFields(b, "(", ")", v.Fields, v.TrailingComma, v.FieldsTail)
		}

		b.WriteString(v.After)
	}
	if len(e.Variants) > 0 && e.TrailingComma {
		b.WriteString(",")
	}
	b.WriteString(e.VariantsTail)

	b.WriteString("}")
}

func printContainer(b *strings.Builder, lead string, attrs []m.Attribute, head string, items []m.Item) {
	b.WriteString(lead)
	printAttrs(b, attrs)
	b.WriteString(head)
	b.WriteString("{")
	printItems(b, items)
	b.WriteString("}")
}

func printBlock(b *strings.Builder, blk *m.Block) {
	b.WriteString("{")

	for _, st := range blk.Stmts {
		printStmt(b, st)
	}
	b.WriteString(blk.Tail)

	b.WriteString("}")
}

func printStmt(b *strings.Builder, st m.Stmt) {
	switch n := st.(type) {
	case *m.Binding:
		b.WriteString(n.Lead)
		printChunks(b, n.Chunks)
	case *m.ExprStmt:
		b.WriteString(n.Lead)
		printChunks(b, n.Expr.Chunks)
	case *m.MacroStmt:
		b.WriteString(n.Lead)
		printChunks(b, n.Chunks)
	case *m.LoopStmt:
		b.WriteString(n.Lead)
		b.WriteString(n.Head)
		b.WriteString(n.HeaderClauses)
		printBlock(b, n.Body)
	case *m.OtherStmt:
		b.WriteString(n.Lead)
		printChunks(b, n.Chunks)
	}
}

func printChunks(b *strings.Builder, chunks []m.Chunk) {
	for _, c := range chunks {
		if c.Block != nil {
			printBlock(b, c.Block)
		} else {
			b.WriteString(c.Literal)
		}
	}
}
