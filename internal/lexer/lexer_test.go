package lexer

import (
	"encoding/json"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	t.Parallel()

	t.Run("empty_text_yields_no_tokens", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, New().Lex("file.py", ""))
	})

	t.Run("python_line_reconstitutes", func(t *testing.T) {
		t.Parallel()

		text := "return enumerate(tqdm_class(iterable, start, **tqdm_kwargs))\n"
		tokens := New().Lex("contrib.py", text)

		require.NotEmpty(t, tokens)
		assert.Equal(t, text, concatTokens(tokens))

		offset := 0
		for _, tok := range tokens {
			assert.Equal(t, offset, tok.Offset)
			offset += len(tok.Text)
		}
	})

	t.Run("unknown_extension_falls_back_to_single_text_token", func(t *testing.T) {
		t.Parallel()

		text := "anything at all\nmore\n"
		tokens := New().Lex("file.zzznoext", text)

		require.Len(t, tokens, 1)
		assert.Equal(t, Token{Offset: 0, Kind: chroma.Text, Text: text}, tokens[0])
	})

	t.Run("python_comment_line_is_comment_kind", func(t *testing.T) {
		t.Parallel()

		tokens := New().Lex("mod.py", "# just a comment\n")

		require.NotEmpty(t, tokens)
		assert.True(t, tokens[0].IsCommentLike())
	})

	t.Run("lexer_selection_is_cached_per_extension", func(t *testing.T) {
		t.Parallel()

		lx := New()
		first := lx.Lex("a.py", "x = 1\n")
		second := lx.Lex("b.py", "x = 1\n")

		assert.Equal(t, first, second)
	})
}

func TestTokenCapabilities(t *testing.T) {
	t.Parallel()

	assert.True(t, Token{Kind: chroma.CommentSingle}.IsCommentLike())
	assert.True(t, Token{Kind: chroma.CommentMultiline}.IsCommentLike())
	assert.False(t, Token{Kind: chroma.Keyword}.IsCommentLike())

	assert.True(t, Token{Kind: chroma.TextWhitespace, Text: "  \n"}.IsWhitespaceOnly())
	assert.True(t, Token{Kind: chroma.Text, Text: "\t\n"}.IsWhitespaceOnly())
	assert.False(t, Token{Kind: chroma.Text, Text: "words"}.IsWhitespaceOnly())
	assert.False(t, Token{Kind: chroma.Keyword, Text: " "}.IsWhitespaceOnly())
}

func TestTokenJSON(t *testing.T) {
	t.Parallel()

	t.Run("marshals_as_three_element_array", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(Token{Offset: 7, Kind: chroma.CommentSingle, Text: "# hi\n"})
		require.NoError(t, err)
		assert.JSONEq(t, `[7, "CommentSingle", "# hi\n"]`, string(data))
	})

	t.Run("round_trips", func(t *testing.T) {
		t.Parallel()

		in := Token{Offset: 3, Kind: chroma.Keyword, Text: "return"}

		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out Token

		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	})
}
