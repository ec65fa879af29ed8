// Package lexer adapts chroma lexers to the annotation pipeline: it produces
// offset-tagged token streams that reconstitute their input exactly, and
// realigns them with physical line boundaries.
package lexer

import (
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
)

// Token is one lexed fragment of source text. Offset is the byte position of
// Text within the lexed input. Concatenating Text over a full token stream, in
// order, reproduces the input exactly.
type Token struct {
	Offset int
	Kind   chroma.TokenType
	Text   string
}

// IsCommentLike reports whether the token belongs to the comment taxonomy.
func (t Token) IsCommentLike() bool {
	return t.Kind.InCategory(chroma.Comment)
}

// IsWhitespaceOnly reports whether the token is whitespace: either tagged as
// whitespace by the lexer, or a generic text token whose content is blank.
func (t Token) IsWhitespaceOnly() bool {
	if t.Kind == chroma.TextWhitespace {
		return true
	}

	return t.Kind.InCategory(chroma.Text) && strings.TrimSpace(t.Text) == ""
}

// MarshalJSON renders the token as the 3-element [offset, kind, text] array
// used by the annotation document schema. The kind is its chroma name.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]any{t.Offset, t.Kind, t.Text})
}

// UnmarshalJSON accepts the [offset, kind, text] array form. An unknown kind
// name degrades to the generic Text type rather than failing the document.
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	err = json.Unmarshal(raw[0], &t.Offset)
	if err != nil {
		return err
	}

	kindErr := json.Unmarshal(raw[1], &t.Kind)
	if kindErr != nil {
		t.Kind = chroma.Text
	}

	return json.Unmarshal(raw[2], &t.Text)
}
