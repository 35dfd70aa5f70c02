// Package verus parses and prints Rust source extended with the Verus
// specification dialect. It is deliberately a structural, span-preserving
// parser: it recognizes just enough syntax to tag functions with modes,
// parameters and fields with qualifiers, and statements with their
// verification role, and keeps everything else as opaque source text.
package verus

import (
	"errors"
	"fmt"
)

// ErrUnmatchedDelimiter is returned when a scan exhausts its input before
// the delimiter depth returns to zero.
var ErrUnmatchedDelimiter = errors.New("unmatched delimiter")

// lexState tracks the mutually exclusive lexical modes of the scanner:
// Normal, InString, InChar, InLineComment, InBlockComment, plus the pending
// escape flag that shields the next byte inside a literal.
type lexState struct {
	inString     bool
	inChar       bool
	lineComment  bool
	blockComment bool
	escape       bool
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// forEachCode walks src from offset start and calls visit for every byte
// that lies outside string, character-literal and comment context. The
// rules are checked in priority order: pending escape, literal modes,
// block comment, line comment, then marker starts. A quote followed by an
// identifier-start byte is a lifetime or label marker and does not open a
// character literal, unless the byte after it is the closing quote
// (an explicit literal such as 'a').
func forEachCode(src string, start int, visit func(i int, b byte) bool) {
	var st lexState

	i := start
	for i < len(src) {
		b := src[i]

		if st.escape {
			st.escape = false
			i++

			continue
		}

		if st.inString || st.inChar {
			switch {
			case b == '\\':
				st.escape = true
			case st.inString && b == '"':
				st.inString = false
			case st.inChar && b == '\'':
				st.inChar = false
			}
			i++

			continue
		}

		if st.blockComment {
			if b == '*' && i+1 < len(src) && src[i+1] == '/' {
				st.blockComment = false
				i += 2

				continue
			}
			i++

			continue
		}

		if st.lineComment {
			if b == '\n' {
				st.lineComment = false
			}
			i++

			continue
		}

		if b == '/' && i+1 < len(src) {
			if src[i+1] == '/' {
				st.lineComment = true
				i += 2

				continue
			}

			if src[i+1] == '*' {
				st.blockComment = true
				i += 2

				continue
			}
		}

		if b == '"' {
			st.inString = true
			i++

			continue
		}

		if b == '\'' {
			lifetime := i+1 < len(src) && isIdentStart(src[i+1]) &&
				!(i+2 < len(src) && src[i+2] == '\'')
			if !lifetime {
				st.inChar = true
			}
			i++

			continue
		}

		if !visit(i, b) {
			return
		}
		i++
	}
}

// depthMode selects which delimiters count toward nesting depth. Expression
// scans track braces, parens and brackets; type scans additionally track
// angle brackets so commas inside generics stay nested.
type depthMode int

const (
	exprMode depthMode = iota
	typeMode
)

// forEachTop calls visit for every code byte of src with the delimiter depth
// at that position; depth counts delimiters opened after start.
func forEachTop(src string, start int, mode depthMode, visit func(i int, b byte, depth int) bool) {
	depth := 0

	forEachCode(src, start, func(i int, b byte) bool {
		switch b {
		case '{', '(', '[':
			if !visit(i, b, depth) {
				return false
			}
			depth++

			return true
		case '}', ')', ']':
			depth--
			return visit(i, b, depth)
		case '<':
			if mode == typeMode {
				if !visit(i, b, depth) {
					return false
				}
				depth++

				return true
			}
		case '>':
			if mode == typeMode {
				// "->" is a return arrow, not a closing angle.
				if i > 0 && src[i-1] == '-' {
					return visit(i, b, depth)
				}
				depth--

				return visit(i, b, depth)
			}
		}

		return visit(i, b, depth)
	})
}

// matchDelim scans forward from an opening delimiter at src[open], counting
// nested delimiter depth, and returns the index of the matching closing
// delimiter. Braces, comment markers and quotes inside literals are inert.
func matchDelim(src string, open int) (int, error) {
	var close byte

	switch src[open] {
	case '{':
		close = '}'
	case '(':
		close = ')'
	case '[':
		close = ']'
	default:
		return 0, fmt.Errorf("not a delimiter at offset %d", open)
	}

	openByte := src[open]
	depth := 1
	match := -1

	forEachCode(src, open+1, func(i int, b byte) bool {
		switch b {
		case openByte:
			depth++
		case close:
			depth--
			if depth == 0 {
				match = i
				return false
			}
		}

		return true
	})

	if match < 0 {
		return 0, ErrUnmatchedDelimiter
	}

	return match, nil
}

// matchAngle matches a generic parameter list starting at src[open] == '<'.
// Nested brace/paren/bracket groups are skipped whole, so const-generic
// expressions cannot unbalance the scan.
func matchAngle(src string, open int) (int, error) {
	depth := 0
	match := -1

	forEachTop(src, open, exprMode, func(i int, b byte, d int) bool {
		if d > 0 {
			return true
		}

		switch b {
		case '<':
			depth++
		case '>':
			if i > 0 && src[i-1] == '-' {
				return true
			}
			depth--
			if depth == 0 {
				match = i
				return false
			}
		}

		return true
	})

	if match < 0 {
		return 0, ErrUnmatchedDelimiter
	}

	return match, nil
}

// skipTrivia advances past whitespace and comments starting at i and
// returns the first offset holding code.
func skipTrivia(src string, i int) int {
	for i < len(src) {
		b := src[i]

		switch {
		case isSpace(b):
			i++
		case b == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case b == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 < len(src) {
				i += 2
			} else {
				i = len(src)
			}
		default:
			return i
		}
	}

	return i
}

// wordAt reads the identifier starting at i, or returns "" when i does not
// hold one.
func wordAt(src string, i int) string {
	if i >= len(src) || !isIdentStart(src[i]) {
		return ""
	}

	end := i
	for end < len(src) && isIdentByte(src[end]) {
		end++
	}

	return src[i:end]
}

// hasWordAt reports whether the identifier w occupies src at offset i with a
// word boundary on both sides.
func hasWordAt(src string, i int, w string) bool {
	if i+len(w) > len(src) || src[i:i+len(w)] != w {
		return false
	}

	if i > 0 && isIdentByte(src[i-1]) {
		return false
	}

	return i+len(w) == len(src) || !isIdentByte(src[i+len(w)])
}

// splitTop splits the code spans of src on top-level occurrences of sep.
// The returned slices cover all of src except the separators themselves.
func splitTop(src string, sep byte, mode depthMode) []string {
	var parts []string

	last := 0

	forEachTop(src, 0, mode, func(i int, b byte, depth int) bool {
		if depth == 0 && b == sep {
			parts = append(parts, src[last:i])
			last = i + 1
		}

		return true
	})

	parts = append(parts, src[last:])

	return parts
}
