package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSitterRustChecker(t *testing.T) {
	checker := NewTreeSitterRustChecker()

	t.Run("plain rust passes", func(t *testing.T) {
		src := `pub fn add_one(x: u32) -> u32 {
    x + 1
}

struct Account {
    balance: u64,
}
`
		assert.NoError(t, checker.Validate([]byte(src)))
	})

	t.Run("leftover clause syntax fails", func(t *testing.T) {
		src := `fn f(x: u32) -> u32
    requires x < 10,
{
    x
}
`
		err := checker.Validate([]byte(src))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "syntax error")
	})

	t.Run("unbalanced braces fail", func(t *testing.T) {
		require.Error(t, checker.Validate([]byte("fn f() {\n")))
	})

	t.Run("empty input passes", func(t *testing.T) {
		assert.NoError(t, checker.Validate(nil))
	})
}
