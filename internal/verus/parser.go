package verus

import (
	"fmt"
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
)

// Parse turns unwrapped dialect source into a Program. Every function is
// tagged with its mode, every parameter and field with its qualifier, and
// statements with enough structure for the stripping rules; anything else
// is preserved as opaque text.
func Parse(src string) (*m.Program, error) {
	p := &parser{src: src}

	items, err := p.items()
	if err != nil {
		return nil, err
	}

	return &m.Program{Items: items}, nil
}

type parser struct {
	src string
	pos int
}

// trivia consumes whitespace and comments and returns them verbatim.
func (p *parser) trivia() string {
	j := skipTrivia(p.src, p.pos)
	t := p.src[p.pos:j]
	p.pos = j

	return t
}

func (p *parser) items() ([]m.Item, error) {
	var items []m.Item

	for {
		lead := p.trivia()
		if p.pos >= len(p.src) {
			if lead != "" {
				items = append(items, &m.Opaque{Text: lead})
			}

			return items, nil
		}

		it, err := p.item(lead)
		if err != nil {
			return nil, err
		}

		items = append(items, it)
	}
}

// item parses one declaration. lead is the trivia preceding it.
func (p *parser) item(lead string) (m.Item, error) {
	attrStart := p.pos
	attrs, err := p.attributes()
	if err != nil {
		return nil, err
	}

	// Scan the modifier words before the defining keyword. Mode keywords are
	// recorded and excluded from the retained head text.
	var head strings.Builder

	mode := m.ModeExecutable
	public := false

	for {
		if p.pos >= len(p.src) {
			return p.opaque(lead, attrStart)
		}

		w := wordAt(p.src, p.pos)
		if w == "" {
			return p.opaque(lead, attrStart)
		}

		switch w {
		case "fn":
			p.pos += len(w)
			p.trivia()

			return p.function(lead, attrs, head.String(), mode, public)
		case "struct":
			return p.structItem(lead, attrs, head.String())
		case "enum":
			return p.enumItem(lead, attrs, head.String())
		case "trait":
			return p.container(lead, attrs, head.String(), containerTrait)
		case "impl":
			return p.container(lead, attrs, head.String(), containerImpl)
		case "mod":
			return p.module(lead, attrs, head.String(), attrStart)
		case "spec":
			mode = m.ModeSpecification
			p.pos += len(w)
			if p.pos < len(p.src) && p.src[p.pos] == '(' {
				closing, err := matchDelim(p.src, p.pos)
				if err != nil {
					return nil, err
				}
				if strings.TrimSpace(p.src[p.pos+1:closing]) == "checked" {
					mode = m.ModeSpecificationChecked
				}
				p.pos = closing + 1
			}
			p.trivia()
		case "proof":
			if mode != m.ModeProofAxiom {
				mode = m.ModeProof
			}
			p.pos += len(w)
			p.trivia()
		case "axiom":
			mode = m.ModeProofAxiom
			p.pos += len(w)
			p.trivia()
		case "exec":
			mode = m.ModeExecutable
			p.pos += len(w)
			p.trivia()
		case "open", "closed", "uninterp", "broadcast":
			// Spec-visibility qualifiers accompany non-executable modes and
			// never survive stripping.
			p.pos += len(w)
			p.trivia()
		case "pub":
			public = true
			head.WriteString(w)
			p.pos += len(w)
			if p.pos < len(p.src) && p.src[p.pos] == '(' {
				closing, err := matchDelim(p.src, p.pos)
				if err != nil {
					return nil, err
				}
				head.WriteString(p.src[p.pos : closing+1])
				p.pos = closing + 1
			}
			head.WriteString(p.trivia())
		case "default", "const", "async", "unsafe":
			head.WriteString(w)
			p.pos += len(w)
			head.WriteString(p.trivia())
		case "extern":
			head.WriteString(w)
			p.pos += len(w)
			head.WriteString(p.trivia())
			if p.pos < len(p.src) && p.src[p.pos] == '"' {
				end := p.stringEnd(p.pos)
				head.WriteString(p.src[p.pos:end])
				p.pos = end
				head.WriteString(p.trivia())
			}
		default:
			return p.opaque(lead, attrStart)
		}
	}
}

// attributes consumes outer (and inner) attributes with their trailing
// trivia.
func (p *parser) attributes() ([]m.Attribute, error) {
	var attrs []m.Attribute

	for p.pos < len(p.src) && p.src[p.pos] == '#' {
		start := p.pos
		j := p.pos + 1
		if j < len(p.src) && p.src[j] == '!' {
			j++
		}
		if j >= len(p.src) || p.src[j] != '[' {
			break
		}

		closing, err := matchDelim(p.src, j)
		if err != nil {
			return nil, fmt.Errorf("attribute at offset %d: %w", start, err)
		}
		p.pos = closing + 1

		attrs = append(attrs, m.Attribute{
			Text:  p.src[start : closing+1],
			After: p.trivia(),
		})
	}

	return attrs, nil
}

// stringEnd returns the offset just past the string literal opening at i.
func (p *parser) stringEnd(i int) int {
	j := i + 1
	for j < len(p.src) {
		switch p.src[j] {
		case '\\':
			j += 2
		case '"':
			return j + 1
		default:
			j++
		}
	}

	return j
}

// opaque consumes an unclassified item. It ends at the first top-level
// semicolon, or at the close of the first top-level brace group when no "="
// was seen before it (so "macro_rules! m { }" is brace-terminated while
// "const X: T = if c { a } else { b };" runs to its semicolon).
func (p *parser) opaque(lead string, start int) (m.Item, error) {
	end := -1
	sawEq := false

	forEachTop(p.src, start, exprMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}

		switch b {
		case ';':
			end = i
			return false
		case '=':
			sawEq = true
		case '{':
			if !sawEq {
				closing, err := matchDelim(p.src, i)
				if err == nil {
					end = closing
				}

				return false
			}
		}

		return true
	})

	if end < 0 {
		end = len(p.src) - 1
	}
	p.pos = end + 1

	return &m.Opaque{Text: lead + p.src[start:p.pos]}, nil
}

// findTop returns the first offset at or after start where pred holds for a
// top-level code byte, or -1.
func findTop(src string, start int, mode depthMode, pred func(i int, b byte) bool) int {
	found := -1

	forEachTop(src, start, mode, func(i int, b byte, depth int) bool {
		if depth == 0 && pred(i, b) {
			found = i
			return false
		}

		return true
	})

	return found
}

func (p *parser) structItem(lead string, attrs []m.Attribute, headPrefix string) (m.Item, error) {
	headFrom := p.pos

	stop := findTop(p.src, p.pos, typeMode, func(_ int, b byte) bool {
		return b == '{' || b == '(' || b == ';'
	})
	if stop < 0 {
		return nil, fmt.Errorf("struct at offset %d: missing body", headFrom)
	}

	s := &m.Struct{Lead: lead, Attrs: attrs, Head: headPrefix + p.src[headFrom:stop]}

	switch p.src[stop] {
	case ';':
		s.Style = m.FieldsUnit
		s.After = ";"
		p.pos = stop + 1
	case '{':
		closing, err := matchDelim(p.src, stop)
		if err != nil {
			return nil, err
		}
		s.Style = m.FieldsNamed
		s.Fields, s.TrailingComma, s.FieldsTail = parseFields(p.src[stop+1 : closing])
		p.pos = closing + 1
	case '(':
		closing, err := matchDelim(p.src, stop)
		if err != nil {
			return nil, err
		}
		s.Style = m.FieldsTuple
		s.Fields, s.TrailingComma, s.FieldsTail = parseFields(p.src[stop+1 : closing])

		semi := findTop(p.src, closing+1, typeMode, func(_ int, b byte) bool { return b == ';' })
		if semi < 0 {
			return nil, fmt.Errorf("tuple struct at offset %d: missing semicolon", headFrom)
		}
		s.After = p.src[closing+1 : semi+1]
		p.pos = semi + 1
	}

	return s, nil
}

// parseFields splits a field list and tags each field with its qualifier.
func parseFields(inner string) ([]m.Field, bool, string) {
	parts := splitTop(inner, ',', typeMode)

	var fields []m.Field

	trailing := false
	tail := ""

	for idx, part := range parts {
		if idx == len(parts)-1 && strings.TrimSpace(part) == "" {
			tail = part
			trailing = idx > 0

			continue
		}

		fields = append(fields, m.Field{
			Qualifier: fieldQualifier(part),
			Text:      part,
		})
	}

	return fields, trailing, tail
}

// fieldQualifier detects a leading ghost/tracked keyword after any
// visibility marker and attributes.
func fieldQualifier(field string) m.Qualifier {
	i := skipTrivia(field, 0)

	for i < len(field) && field[i] == '#' {
		j := i + 1
		if j < len(field) && field[j] == '!' {
			j++
		}
		if j >= len(field) || field[j] != '[' {
			break
		}
		closing, err := matchDelim(field, j)
		if err != nil {
			return m.QualifierExecutable
		}
		i = skipTrivia(field, closing+1)
	}

	if hasWordAt(field, i, "pub") {
		i += len("pub")
		i = skipTrivia(field, i)
		if i < len(field) && field[i] == '(' {
			closing, err := matchDelim(field, i)
			if err != nil {
				return m.QualifierExecutable
			}
			i = skipTrivia(field, closing+1)
		}
	}

	switch {
	case hasWordAt(field, i, "ghost"):
		return m.QualifierGhost
	case hasWordAt(field, i, "tracked"):
		return m.QualifierTracked
	default:
		return m.QualifierExecutable
	}
}

func (p *parser) enumItem(lead string, attrs []m.Attribute, headPrefix string) (m.Item, error) {
	headFrom := p.pos

	open := findTop(p.src, p.pos, typeMode, func(_ int, b byte) bool { return b == '{' })
	if open < 0 {
		return nil, fmt.Errorf("enum at offset %d: missing body", headFrom)
	}

	closing, err := matchDelim(p.src, open)
	if err != nil {
		return nil, err
	}

	e := &m.Enum{Lead: lead, Attrs: attrs, Head: headPrefix + p.src[headFrom:open]}

	parts := splitTop(p.src[open+1:closing], ',', typeMode)
	for idx, part := range parts {
		if idx == len(parts)-1 && strings.TrimSpace(part) == "" {
			e.VariantsTail = part
			e.TrailingComma = idx > 0

			continue
		}

		v, err := parseVariant(part)
		if err != nil {
			return nil, err
		}
		e.Variants = append(e.Variants, v)
	}

	p.pos = closing + 1

	return e, nil
}

// parseVariant splits one enum variant into head, optional field group and
// optional discriminant.
func parseVariant(part string) (m.Variant, error) {
	v := m.Variant{Style: m.FieldsUnit}

	stop := findTop(part, 0, typeMode, func(_ int, b byte) bool {
		return b == '{' || b == '(' || b == '='
	})
	if stop < 0 {
		v.Head = part
		return v, nil
	}

	v.Head = part[:stop]

	switch part[stop] {
	case '=':
		v.After = part[stop:]
	case '{', '(':
		closing, err := matchDelim(part, stop)
		if err != nil {
			return v, err
		}
		if part[stop] == '{' {
			v.Style = m.FieldsNamed
		} else {
			v.Style = m.FieldsTuple
		}
		v.Fields, v.TrailingComma, v.FieldsTail = parseFields(part[stop+1 : closing])
		v.After = part[closing+1:]
	}

	return v, nil
}

type containerKind int

const (
	containerTrait containerKind = iota
	containerImpl
)

func (p *parser) container(lead string, attrs []m.Attribute, headPrefix string, kind containerKind) (m.Item, error) {
	headFrom := p.pos

	open := findTop(p.src, p.pos, typeMode, func(_ int, b byte) bool { return b == '{' })
	if open < 0 {
		return nil, fmt.Errorf("item at offset %d: missing body", headFrom)
	}

	closing, err := matchDelim(p.src, open)
	if err != nil {
		return nil, err
	}

	inner := &parser{src: p.src[open+1 : closing]}
	items, err := inner.items()
	if err != nil {
		return nil, err
	}
	p.pos = closing + 1

	head := headPrefix + p.src[headFrom:open]
	if kind == containerTrait {
		return &m.Trait{Lead: lead, Attrs: attrs, Head: head, Items: items}, nil
	}

	return &m.Impl{Lead: lead, Attrs: attrs, Head: head, Items: items}, nil
}

func (p *parser) module(lead string, attrs []m.Attribute, headPrefix string, attrStart int) (m.Item, error) {
	headFrom := p.pos

	stop := findTop(p.src, p.pos, exprMode, func(_ int, b byte) bool {
		return b == '{' || b == ';'
	})
	if stop < 0 || p.src[stop] == ';' {
		// Declaration form "mod name;" passes through untouched.
		return p.opaque(lead, attrStart)
	}

	closing, err := matchDelim(p.src, stop)
	if err != nil {
		return nil, err
	}

	inner := &parser{src: p.src[stop+1 : closing]}
	items, err := inner.items()
	if err != nil {
		return nil, err
	}
	p.pos = closing + 1

	return &m.Module{Lead: lead, Attrs: attrs, Head: headPrefix + p.src[headFrom:stop], Items: items}, nil
}
