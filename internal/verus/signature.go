package verus

import (
	"fmt"
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
)

// contractKeywords are the clause introducers that can follow a parameter
// list. decreases is parsed but never rendered.
var contractKeywords = map[string]bool{
	"requires":         true,
	"recommends":       true,
	"ensures":          true,
	"default_ensures":  true,
	"returns":          true,
	"opens_invariants": true,
	"no_unwind":        true,
	"decreases":        true,
	"invariant":        true,
}

// clauseKeywordAt reports whether a clause keyword starts at i. A match is
// rejected when the word is a path or method segment, as in
// "ensures self.invariant()".
func clauseKeywordAt(src string, i int) bool {
	if i > 0 && isIdentByte(src[i-1]) {
		return false
	}
	if !contractKeywords[wordAt(src, i)] {
		return false
	}

	for j := i - 1; j >= 0; j-- {
		if isSpace(src[j]) {
			continue
		}
		if src[j] == '.' || src[j] == ':' {
			return false
		}

		break
	}

	return true
}

// function parses from the function name onward. The caller has already
// consumed the qualifiers, the mode and the fn keyword.
func (p *parser) function(lead string, attrs []m.Attribute, head string, mode m.Mode, public bool) (m.Item, error) {
	name := wordAt(p.src, p.pos)
	if name == "" {
		return nil, fmt.Errorf("expected function name at offset %d", p.pos)
	}
	p.pos += len(name)
	p.trivia()

	fn := &m.Function{
		Lead:   lead,
		Attrs:  attrs,
		Head:   head,
		Mode:   mode,
		Name:   name,
		Public: public,
	}

	if p.pos < len(p.src) && p.src[p.pos] == '<' {
		closing, err := matchAngle(p.src, p.pos)
		if err != nil {
			return nil, fmt.Errorf("fn %s: %w", name, err)
		}
		fn.Generics = p.src[p.pos : closing+1]
		p.pos = closing + 1
		p.trivia()
	}

	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		return nil, fmt.Errorf("fn %s: expected parameter list at offset %d", name, p.pos)
	}
	closing, err := matchDelim(p.src, p.pos)
	if err != nil {
		return nil, fmt.Errorf("fn %s: %w", name, err)
	}
	fn.Params, fn.ParamsTrailingComma, fn.ParamsTail = parseParams(p.src[p.pos+1 : closing])
	p.pos = closing + 1

	if err := p.signatureTail(fn); err != nil {
		return nil, fmt.Errorf("fn %s: %w", name, err)
	}

	return fn, nil
}

// parseParams splits a parameter list and tags each parameter with its
// qualifier, detected either from a leading ghost/tracked keyword or from a
// type whose last path segment is Ghost or Tracked.
func parseParams(inner string) ([]m.Param, bool, string) {
	parts := splitTop(inner, ',', typeMode)

	var params []m.Param

	trailing := false
	tail := ""

	for idx, part := range parts {
		if idx == len(parts)-1 && strings.TrimSpace(part) == "" {
			tail = part
			trailing = idx > 0

			continue
		}

		params = append(params, m.Param{
			Qualifier: paramQualifier(part),
			Text:      part,
		})
	}

	return params, trailing, tail
}

func paramQualifier(param string) m.Qualifier {
	i := skipTrivia(param, 0)

	switch {
	case hasWordAt(param, i, "ghost"):
		return m.QualifierGhost
	case hasWordAt(param, i, "tracked"):
		return m.QualifierTracked
	}

	colon := findTop(param, i, typeMode, func(j int, b byte) bool {
		if b != ':' {
			return false
		}
		if j+1 < len(param) && param[j+1] == ':' {
			return false
		}
		if j > 0 && param[j-1] == ':' {
			return false
		}

		return true
	})
	if colon < 0 {
		return m.QualifierExecutable
	}

	switch lastPathSegment(param[colon+1:]) {
	case "Ghost":
		return m.QualifierGhost
	case "Tracked":
		return m.QualifierTracked
	default:
		return m.QualifierExecutable
	}
}

// lastPathSegment returns the final segment of a bare type path, before any
// generic arguments. A type that does not start with a path ("&Ghost<T>",
// "(Ghost<T>, u8)") yields "".
func lastPathSegment(ty string) string {
	i := skipTrivia(ty, 0)
	if i >= len(ty) || !isIdentStart(ty[i]) {
		return ""
	}

	seg := wordAt(ty, i)
	i += len(seg)

	for {
		j := skipTrivia(ty, i)
		if j+1 < len(ty) && ty[j] == ':' && ty[j+1] == ':' {
			j = skipTrivia(ty, j+2)
			next := wordAt(ty, j)
			if next == "" {
				return ""
			}
			seg = next
			i = j + len(next)

			continue
		}

		return seg
	}
}

// clauseSection is one contract clause as raw source text.
type clauseSection struct {
	keyword string
	text    string
}

// signatureTail scans everything between ")" and the function body (or the
// terminating semicolon): the return type and where clause are retained
// verbatim, contract clauses are collected for the visitor, and the body
// opening brace is found.
//
// The return-type region is scanned with angle-bracket tracking so commas
// and ">" inside generics are nested. Clause expressions are scanned without
// it, since there "<" is almost always a comparison. A top-level "{" inside
// the clause region is the body unless the preceding token was an operator
// or an if/match/while-style keyword still waits for its block.
func (p *parser) signatureTail(fn *m.Function) error {
	tailStart := p.pos

	stop := -1
	stopKind := byte(0)

	forEachTop(p.src, tailStart, typeMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}

		switch {
		case b == '{' || b == ';':
			stop, stopKind = i, b
			return false
		case isIdentStart(b) && clauseKeywordAt(p.src, i):
			stop, stopKind = i, 'c'
			return false
		}

		return true
	})

	if stop < 0 {
		return fmt.Errorf("unterminated signature at offset %d", tailStart)
	}

	fn.Tail = p.src[tailStart:stop]

	switch stopKind {
	case ';':
		p.pos = stop + 1
		return nil
	case '{':
		return p.functionBody(fn, stop)
	}

	sections, bodyAt, declAt, err := p.clauseRegion(stop)
	if err != nil {
		return err
	}

	contract, err := parseClauses(sections)
	if err != nil {
		return err
	}
	fn.Contract = contract

	if declAt >= 0 {
		p.pos = declAt + 1
		return nil
	}

	return p.functionBody(fn, bodyAt)
}

func (p *parser) functionBody(fn *m.Function, open int) error {
	closing, err := matchDelim(p.src, open)
	if err != nil {
		return err
	}

	body, err := parseBlock(p.src[open+1 : closing])
	if err != nil {
		return err
	}
	fn.Body = body
	p.pos = closing + 1

	return nil
}

// blockPendingWords are keywords whose block argument is an expression
// brace, not the function body.
var blockPendingWords = map[string]bool{
	"if":    true,
	"else":  true,
	"match": true,
	"loop":  true,
	"while": true,
	"for":   true,
}

func isOpByte(b byte) bool {
	switch b {
	case '=', '<', '>', '&', '|', '+', '-', '*', '/', '%', '^', '!', '.':
		return true
	default:
		return false
	}
}

// clauseRegion scans the contract clauses starting at the first clause
// keyword. It returns the collected sections plus the offset of the body
// brace, or of the terminating semicolon for declaration-only functions.
func (p *parser) clauseRegion(start int) ([]clauseSection, int, int, error) {
	var sections []clauseSection

	keyword := wordAt(p.src, start)
	segStart := start + len(keyword)
	bodyAt, declAt := -1, -1

	pending := 0
	lastSig := byte(0)

	forEachTop(p.src, segStart, exprMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}
		if isSpace(b) {
			return true
		}

		switch {
		case b == '{':
			if pending > 0 || isOpByte(lastSig) {
				if pending > 0 {
					pending--
				}
				lastSig = b

				return true
			}
			bodyAt = i

			return false
		case b == ';':
			declAt = i
			return false
		case isIdentStart(b) && (i == 0 || !isIdentByte(p.src[i-1])):
			w := wordAt(p.src, i)
			switch {
			case clauseKeywordAt(p.src, i):
				sections = append(sections, clauseSection{keyword, p.src[segStart:i]})
				keyword = w
				segStart = i + len(w)
			case blockPendingWords[w]:
				pending++
			}
		}
		lastSig = b

		return true
	})

	if bodyAt < 0 && declAt < 0 {
		return nil, 0, 0, fmt.Errorf("unterminated contract clauses at offset %d", start)
	}

	end := bodyAt
	if end < 0 {
		end = declAt
	}
	sections = append(sections, clauseSection{keyword, p.src[segStart:end]})

	return sections, bodyAt, declAt, nil
}

// parseClauses interprets the collected sections as contract clauses.
func parseClauses(sections []clauseSection) (m.ContractClauses, error) {
	var c m.ContractClauses

	for _, s := range sections {
		switch s.keyword {
		case "requires":
			c.Requires = append(c.Requires, clauseExprs(s.text)...)
		case "recommends":
			exprs, via := splitVia(s.text)
			c.Recommends = append(c.Recommends, exprs...)
			if via != "" {
				c.RecommendsVia = via
			}
		case "ensures":
			c.Ensures = append(c.Ensures, clauseExprs(s.text)...)
		case "default_ensures":
			c.DefaultEnsures = append(c.DefaultEnsures, clauseExprs(s.text)...)
		case "returns":
			c.Returns = append(c.Returns, clauseExprs(s.text)...)
		case "opens_invariants":
			c.Invariants = parseInvariants(s.text)
		case "no_unwind":
			c.Unwind = parseUnwind(s.text)
		case "decreases":
			c.Decreases = append(c.Decreases, clauseExprs(s.text)...)
		case "invariant":
			// Loop-style clause sneaking into a signature; treat it as a
			// recommends-grade annotation and drop it silently.
		default:
			return c, fmt.Errorf("unrecognized contract clause %q", s.keyword)
		}
	}

	return c, nil
}

// clauseExprs splits a clause on its top-level commas. Commas inside
// quantifier binder lists split too; the renderer joins the fragments back
// with the same separator, so the text survives intact.
func clauseExprs(text string) []string {
	var exprs []string

	for _, part := range splitTop(text, ',', exprMode) {
		part = strings.TrimSpace(part)
		if part != "" {
			exprs = append(exprs, part)
		}
	}

	return exprs
}

// splitVia separates the expressions of a recommends clause from its "via"
// proof function.
func splitVia(text string) ([]string, string) {
	at := findTop(text, 0, exprMode, func(i int, b byte) bool {
		return b == 'v' && (i == 0 || !isIdentByte(text[i-1])) && hasWordAt(text, i, "via")
	})
	if at < 0 {
		return clauseExprs(text), ""
	}

	return clauseExprs(text[:at]), strings.TrimSpace(text[at+len("via"):])
}

func parseInvariants(text string) *m.InvariantsClause {
	t := strings.TrimSpace(text)

	switch {
	case t == "any":
		return &m.InvariantsClause{Kind: m.InvariantsAny}
	case t == "none":
		return &m.InvariantsClause{Kind: m.InvariantsNone}
	case strings.HasPrefix(t, "["):
		return &m.InvariantsClause{Kind: m.InvariantsList, Exprs: clauseExprs(strings.Trim(t, "[]"))}
	default:
		return &m.InvariantsClause{Kind: m.InvariantsSet, Exprs: []string{t}}
	}
}

func parseUnwind(text string) *m.UnwindClause {
	t := strings.TrimSpace(text)

	u := &m.UnwindClause{}
	if strings.HasPrefix(t, "when") && (len(t) == len("when") || !isIdentByte(t[len("when")])) {
		u.When = strings.TrimSpace(t[len("when"):])
	}

	return u
}
