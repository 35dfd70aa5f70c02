package verus

import (
	"fmt"
	"strings"

	m "github.com/verus-tools/vstrip/internal/model"
)

// macroStatements are the statement-position macros that proof code is
// written in. Other statement macros, including the executable assert!,
// pass through.
var macroStatements = map[string]bool{
	"proof":                true,
	"calc":                 true,
	"assert_forall_by":     true,
	"assert_by":            true,
	"open_invariant":       true,
	"open_local_invariant": true,
}

// IsProofMacro reports whether a statement macro by this name is proof code
// the stripper removes.
func IsProofMacro(name string) bool { return macroStatements[name] }

// loopClauseWords are the clause introducers a loop header can carry.
var loopClauseWords = map[string]bool{
	"invariant":              true,
	"invariant_except_break": true,
	"invariant_ensures":      true,
	"ensures":                true,
	"decreases":              true,
}

// parseBlock parses brace-group contents into statements. src excludes the
// braces themselves.
func parseBlock(src string) (*m.Block, error) {
	b := &m.Block{}
	pos := 0

	for {
		j := skipTrivia(src, pos)
		lead := src[pos:j]
		pos = j

		if pos >= len(src) {
			b.Tail = lead
			return b, nil
		}

		stmt, next, err := parseStmt(src, pos, lead)
		if err != nil {
			return nil, err
		}
		if next <= pos {
			return nil, fmt.Errorf("statement parser stalled at offset %d", pos)
		}

		b.Stmts = append(b.Stmts, stmt)
		pos = next
	}
}

func parseStmt(src string, pos int, lead string) (m.Stmt, int, error) {
	switch w := wordAt(src, pos); w {
	case "let":
		return parseBinding(src, pos, lead)
	case "proof":
		i := skipTrivia(src, pos+len(w))
		if i < len(src) && src[i] == '{' {
			closing, err := matchDelim(src, i)
			if err != nil {
				return nil, 0, err
			}
			end := closing + 1

			return exprStmt(lead, m.ExprProofBlock, src[pos:end]), end, nil
		}
	case "assert":
		i := skipTrivia(src, pos+len(w))
		switch {
		case i < len(src) && src[i] == '(':
			end := generalEnd(src, pos)
			return exprStmt(lead, m.ExprAssert, src[pos:end]), end, nil
		case wordAt(src, i) == "forall":
			end := generalEnd(src, pos)
			return exprStmt(lead, m.ExprAssertForall, src[pos:end]), end, nil
		}
	case "assume":
		if i := skipTrivia(src, pos+len(w)); i < len(src) && src[i] == '(' {
			end := generalEnd(src, pos)
			return exprStmt(lead, m.ExprAssume, src[pos:end]), end, nil
		}
	case "forall", "exists", "choose":
		if i := skipTrivia(src, pos+len(w)); i < len(src) && src[i] == '|' {
			kind := map[string]m.ExprKind{
				"forall": m.ExprForall,
				"exists": m.ExprExists,
				"choose": m.ExprChoose,
			}[w]
			end := generalEnd(src, pos)

			return exprStmt(lead, kind, src[pos:end]), end, nil
		}
	case "while", "loop", "for":
		return parseLoop(src, pos, lead)
	}

	if st, next, ok, err := parseMacroStmt(src, pos, lead); ok || err != nil {
		return st, next, err
	}

	end := generalEnd(src, pos)
	text := src[pos:end]

	if kind, ok := classifyGhostExpr(text); ok {
		return exprStmt(lead, kind, text), end, nil
	}

	chunks, err := chunkify(text)
	if err != nil {
		return nil, 0, err
	}

	return &m.OtherStmt{Lead: lead, Chunks: chunks}, end, nil
}

// exprStmt wraps raw statement text in a classified expression statement.
// The text stays a single literal chunk; classified statements are removed
// whole, so their interior never needs structure.
func exprStmt(lead string, kind m.ExprKind, text string) *m.ExprStmt {
	return &m.ExprStmt{
		Lead: lead,
		Expr: m.Expression{
			Kind:   kind,
			Chunks: []m.Chunk{{Literal: text}},
		},
	}
}

func parseBinding(src string, pos int, lead string) (m.Stmt, int, error) {
	q := m.QualifierExecutable

	i := skipTrivia(src, pos+len("let"))
	for _, kw := range []struct {
		word string
		q    m.Qualifier
	}{{"ghost", m.QualifierGhost}, {"tracked", m.QualifierTracked}} {
		if !hasWordAt(src, i, kw.word) {
			continue
		}
		// A variable actually named ghost or tracked binds, it does not
		// qualify: "let ghost = 5;".
		j := skipTrivia(src, i+len(kw.word))
		if j < len(src) && (isIdentStart(src[j]) || src[j] == '(') {
			q = kw.q
		}
	}

	end := semicolonEnd(src, pos)

	chunks, err := chunkify(src[pos:end])
	if err != nil {
		return nil, 0, err
	}

	return &m.Binding{Lead: lead, Qualifier: q, Chunks: chunks}, end, nil
}

// parseMacroStmt handles "name! delim" statements. Returns ok=false when the
// statement is not a macro invocation.
func parseMacroStmt(src string, pos int, lead string) (m.Stmt, int, bool, error) {
	name := wordAt(src, pos)
	if name == "" {
		return nil, 0, false, nil
	}

	i := skipTrivia(src, pos+len(name))
	if i >= len(src) || src[i] != '!' {
		return nil, 0, false, nil
	}

	i = skipTrivia(src, i+1)
	if i >= len(src) {
		return nil, 0, false, nil
	}

	switch src[i] {
	case '(', '[', '{':
	default:
		return nil, 0, false, nil
	}

	closing, err := matchDelim(src, i)
	if err != nil {
		return nil, 0, false, err
	}
	end := closing + 1

	if src[i] != '{' {
		if j := skipTrivia(src, end); j < len(src) && src[j] == ';' {
			end = j + 1
		}
	}

	chunks, err := chunkify(src[pos:end])
	if err != nil {
		return nil, 0, false, err
	}

	return &m.MacroStmt{Lead: lead, Name: name, Chunks: chunks}, end, true, nil
}

func parseLoop(src string, pos int, lead string) (m.Stmt, int, error) {
	stop := -1
	isClause := false

	forEachTop(src, pos, exprMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}

		switch {
		case b == '{':
			stop = i
			return false
		case isIdentStart(b) && (i == pos || !isIdentByte(src[i-1])):
			if loopClauseWords[wordAt(src, i)] && !pathSegmentAt(src, i) {
				stop, isClause = i, true
				return false
			}
		}

		return true
	})

	if stop < 0 {
		return nil, 0, fmt.Errorf("unterminated loop header at offset %d", pos)
	}

	st := &m.LoopStmt{Lead: lead, Head: src[pos:stop]}

	open := stop
	if isClause {
		_, bodyAt, declAt, err := clausesUpToBody(src, stop)
		if err != nil {
			return nil, 0, err
		}
		if declAt >= 0 {
			return nil, 0, fmt.Errorf("loop header at offset %d ends in a semicolon", pos)
		}
		st.HeaderClauses = src[stop:bodyAt]
		open = bodyAt
	}

	closing, err := matchDelim(src, open)
	if err != nil {
		return nil, 0, err
	}

	body, err := parseBlock(src[open+1 : closing])
	if err != nil {
		return nil, 0, err
	}
	st.Body = body

	return st, closing + 1, nil
}

// pathSegmentAt reports whether the word at i is preceded by "." or ":",
// meaning it is a member access rather than a keyword.
func pathSegmentAt(src string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if isSpace(src[j]) {
			continue
		}

		return src[j] == '.' || src[j] == ':'
	}

	return false
}

// classifyGhostExpr recognizes statement text that is a ghost expression in
// its own right: conjunct/disjunct markers, ghost implication operators, and
// a trailing view projection.
func classifyGhostExpr(text string) (m.ExprKind, bool) {
	if strings.HasPrefix(text, "&&&") {
		return m.ExprConjunction, true
	}
	if strings.HasPrefix(text, "|||") {
		return m.ExprDisjunction, true
	}

	kind := m.ExprOpaque
	found := false

	forEachTop(text, 0, exprMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}

		switch {
		case strings.HasPrefix(text[i:], "<==>"):
			kind, found = m.ExprEquivalent, true
			return false
		case strings.HasPrefix(text[i:], "<=="):
			kind, found = m.ExprImpliedBy, true
			return false
		case strings.HasPrefix(text[i:], "==>"):
			kind, found = m.ExprImplies, true
			return false
		}

		return true
	})
	if found {
		return kind, true
	}

	if trailingViewAt(text) {
		return m.ExprView, true
	}

	return m.ExprOpaque, false
}

// trailingViewAt reports whether the statement ends in a "@" view projection,
// before any terminating semicolon.
func trailingViewAt(text string) bool {
	i := len(text) - 1
	for i >= 0 && (isSpace(text[i]) || text[i] == ';') {
		i--
	}
	if i < 1 || text[i] != '@' {
		return false
	}

	prev := text[i-1]

	return isIdentByte(prev) || prev == ')' || prev == ']'
}

// semicolonEnd returns the offset just past the first top-level semicolon,
// or the end of src.
func semicolonEnd(src string, pos int) int {
	end := len(src)

	forEachTop(src, pos, exprMode, func(i int, b byte, depth int) bool {
		if depth == 0 && b == ';' {
			end = i + 1
			return false
		}

		return true
	})

	return end
}

// generalEnd finds the end of a statement that may or may not carry a
// semicolon. It stops just past a top-level semicolon, or after a top-level
// brace group whose follower does not continue the expression.
func generalEnd(src string, pos int) int {
	end := len(src)

	forEachTop(src, pos, exprMode, func(i int, b byte, depth int) bool {
		if depth != 0 {
			return true
		}

		switch b {
		case ';':
			end = i + 1
			return false
		case '}':
			j := skipTrivia(src, i+1)
			if j >= len(src) {
				end = len(src)
				return false
			}

			nb := src[j]
			if nb == '?' || nb == ';' || isOpByte(nb) || hasWordAt(src, j, "else") {
				return true
			}
			end = i + 1

			return false
		}

		return true
	})

	return end
}

// chunkify splits statement text into literal runs and nested blocks. Every
// code-context brace group recurses, including closure bodies inside call
// arguments; brace groups that are really expressions still round-trip
// because pass-through is the default for everything inside.
func chunkify(text string) ([]m.Chunk, error) {
	var chunks []m.Chunk

	last, cur := 0, 0

	for {
		open := -1
		forEachCode(text, cur, func(i int, b byte) bool {
			if b == '{' {
				open = i
				return false
			}

			return true
		})

		if open < 0 {
			if last < len(text) {
				chunks = append(chunks, m.Chunk{Literal: text[last:]})
			}

			return chunks, nil
		}

		closing, err := matchDelim(text, open)
		if err != nil {
			return nil, err
		}

		block, err := parseBlock(text[open+1 : closing])
		if err != nil {
			return nil, err
		}

		if open > last {
			chunks = append(chunks, m.Chunk{Literal: text[last:open]})
		}
		chunks = append(chunks, m.Chunk{Block: block})

		last, cur = closing+1, closing+1
	}
}

// clausesUpToBody scans clause text the way a function signature does and
// returns where the body brace (or a terminating semicolon) sits.
func clausesUpToBody(src string, start int) ([]clauseSection, int, int, error) {
	p := &parser{src: src}
	return p.clauseRegion(start)
}
