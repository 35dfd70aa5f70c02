package adapter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// RustChecker validates that source text is plain parseable Rust. Stripped
// output must be free of dialect syntax, so a grammar that knows nothing
// about the dialect is exactly the right judge.
type RustChecker interface {
	Validate(content []byte) error
}

// TreeSitterRustChecker parses candidate output with the tree-sitter Rust
// grammar and rejects trees containing error nodes.
type TreeSitterRustChecker struct {
	lang *sitter.Language
}

// NewTreeSitterRustChecker constructs a checker with the Rust grammar
// loaded.
func NewTreeSitterRustChecker() *TreeSitterRustChecker {
	return &TreeSitterRustChecker{
		lang: sitter.NewLanguage(tree_sitter_rust.Language()),
	}
}

// Validate parses content and returns an error describing the first
// malformed region, or nil when the tree is clean.
func (c *TreeSitterRustChecker) Validate(content []byte) error {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(c.lang); err != nil {
		return fmt.Errorf("load grammar: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return fmt.Errorf("parse produced no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	if bad := firstErrorNode(root); bad != nil {
		start := bad.StartPosition()
		return fmt.Errorf("syntax error at line %d, column %d", start.Row+1, start.Column+1)
	}

	return fmt.Errorf("syntax error")
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}

	return nil
}
