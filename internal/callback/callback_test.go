package callback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtarnawa/diffscope/internal/lexer"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("string_result_is_used_verbatim", func(t *testing.T) {
		t.Parallel()

		cb, err := Compile(`"whitespace"`)
		require.NoError(t, err)

		got, ok := cb(nil)
		assert.True(t, ok)
		assert.Equal(t, "whitespace", got)
	})

	t.Run("nil_result_defers_to_default", func(t *testing.T) {
		t.Parallel()

		cb, err := Compile(`nil`)
		require.NoError(t, err)

		_, ok := cb(nil)
		assert.False(t, ok)
	})

	t.Run("tokens_are_visible_to_the_expression", func(t *testing.T) {
		t.Parallel()

		cb, err := Compile(`any(tokens, {.Text contains "FIXME"}) ? "documentation" : nil`)
		require.NoError(t, err)

		marked := []lexer.Token{{Kind: chroma.CommentSingle, Text: "# FIXME later\n"}}
		got, ok := cb(marked)
		require.True(t, ok)
		assert.Equal(t, "documentation", got)

		_, ok = cb([]lexer.Token{{Kind: chroma.Keyword, Text: "return"}})
		assert.False(t, ok)
	})

	t.Run("leading_return_keyword_is_stripped", func(t *testing.T) {
		t.Parallel()

		cb, err := Compile(`return "code"`)
		require.NoError(t, err)

		got, ok := cb(nil)
		assert.True(t, ok)
		assert.Equal(t, "code", got)
	})

	t.Run("malformed_source_fails_at_compile_time", func(t *testing.T) {
		t.Parallel()

		_, err := Compile(`this is not ((( an expression`)
		assert.Error(t, err)

		_, err = Compile("   ")
		assert.Error(t, err)
	})
}

func TestCompileArg(t *testing.T) {
	t.Parallel()

	t.Run("existing_path_is_read_as_source", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cb.expr")
		require.NoError(t, os.WriteFile(path, []byte(`"fromfile"`), 0o644))

		cb, err := CompileArg(path)
		require.NoError(t, err)

		got, ok := cb(nil)
		assert.True(t, ok)
		assert.Equal(t, "fromfile", got)
	})

	t.Run("non_path_is_inline_source", func(t *testing.T) {
		t.Parallel()

		cb, err := CompileArg(`"inline"`)
		require.NoError(t, err)

		got, ok := cb(nil)
		assert.True(t, ok)
		assert.Equal(t, "inline", got)
	})
}
