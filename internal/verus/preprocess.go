package verus

import (
	"fmt"
	"strings"
)

// UnwrapBlocks removes every top-level "verus! { ... }" wrapper from source,
// leaving the inner text and a trailing newline in its place so a downstream
// parser sees ordinary items. Occurrences of the marker inside strings,
// character literals or comments are ignored. An opening wrapper whose brace
// never closes is a structural error; no recovery position is guessed.
func UnwrapBlocks(source string) (string, error) {
	var marks []int

	forEachCode(source, 0, func(i int, b byte) bool {
		if b == 'v' && hasWordAt(source, i, "verus") &&
			i+5 < len(source) && source[i+5] == '!' {
			marks = append(marks, i)
		}

		return true
	})

	if len(marks) == 0 {
		return source, nil
	}

	var out strings.Builder

	cursor := 0

	for _, mark := range marks {
		if mark < cursor {
			continue
		}

		out.WriteString(source[cursor:mark])
		cursor = mark + len("verus!")

		// Skip whitespace between the marker and its opening brace.
		open := cursor
		for open < len(source) && isSpace(source[open]) {
			open++
		}

		if open >= len(source) || source[open] != '{' {
			out.WriteString("verus!")
			continue
		}

		closing, err := matchDelim(source, open)
		if err != nil {
			return "", fmt.Errorf("verus! block at offset %d: %w", mark, err)
		}

		out.WriteString(source[open+1 : closing])
		out.WriteByte('\n')
		cursor = closing + 1
	}

	out.WriteString(source[cursor:])

	return out.String(), nil
}
