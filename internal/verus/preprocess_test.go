package verus

import (
	"errors"
	"strings"
	"testing"
)

func TestUnwrapBlocks(t *testing.T) {
	t.Run("no wrapper passes through untouched", func(t *testing.T) {
		src := "fn main() {\n    println!(\"hi\");\n}\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if got != src {
			t.Fatalf("source changed without a wrapper:\n%q", got)
		}
	})

	t.Run("single wrapper is spliced away", func(t *testing.T) {
		src := "use vstd::prelude::*;\n\nverus! {\nfn f() { }\n}\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if strings.Contains(got, "verus!") {
			t.Fatalf("wrapper survived: %q", got)
		}
		if !strings.Contains(got, "fn f() { }") {
			t.Fatalf("inner text lost: %q", got)
		}
		if !strings.Contains(got, "use vstd::prelude::*;") {
			t.Fatalf("text before the wrapper lost: %q", got)
		}
	})

	t.Run("multiple wrappers in one file", func(t *testing.T) {
		src := "verus! { fn a() {} }\nmod x;\nverus! { fn b() {} }\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if strings.Contains(got, "verus!") {
			t.Fatalf("a wrapper survived: %q", got)
		}
		for _, want := range []string{"fn a() {}", "mod x;", "fn b() {}"} {
			if !strings.Contains(got, want) {
				t.Fatalf("missing %q in %q", want, got)
			}
		}
	})

	t.Run("marker inside a string is kept", func(t *testing.T) {
		src := `let s = "verus! { not real }";` + "\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if got != src {
			t.Fatalf("string content was rewritten: %q", got)
		}
	})

	t.Run("marker inside a comment is kept", func(t *testing.T) {
		src := "// verus! { nope }\nfn f() {}\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if got != src {
			t.Fatalf("comment content was rewritten: %q", got)
		}
	})

	t.Run("marker without a brace stays literal", func(t *testing.T) {
		src := "verus!;\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if !strings.Contains(got, "verus!") {
			t.Fatalf("bare marker dropped: %q", got)
		}
	})

	t.Run("unclosed wrapper fails structurally", func(t *testing.T) {
		_, err := UnwrapBlocks("verus! { fn f() {}\n")
		if !errors.Is(err, ErrUnmatchedDelimiter) {
			t.Fatalf("expected ErrUnmatchedDelimiter, got %v", err)
		}
	})

	t.Run("braces in inner strings do not end the wrapper", func(t *testing.T) {
		src := "verus! {\nfn f() -> &'static str { \"}\" }\n}\nafter\n"

		got, err := UnwrapBlocks(src)
		if err != nil {
			t.Fatalf("UnwrapBlocks failed: %v", err)
		}
		if !strings.Contains(got, `"}"`) {
			t.Fatalf("string body lost: %q", got)
		}
		if !strings.Contains(got, "after") {
			t.Fatalf("trailing text lost: %q", got)
		}
	})
}
