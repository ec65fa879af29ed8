package lexer

import "strings"

// SplitMultiline splits every token whose text spans multiple physical lines
// into per-line fragments. Each fragment inherits the original kind, offsets
// advance by the cumulative length of the preceding fragments, and no emitted
// fragment contains more than one line terminator (kept at the fragment end,
// except possibly the last fragment of an unterminated token).
func SplitMultiline(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))

	for _, tok := range tokens {
		lines := splitAfterNewlines(tok.Text)
		if len(lines) <= 1 {
			out = append(out, tok)

			continue
		}

		running := 0

		for _, line := range lines {
			out = append(out, Token{Offset: tok.Offset + running, Kind: tok.Kind, Text: line})
			running += len(line)
		}
	}

	return out
}

// splitAfterNewlines behaves like splitting with terminators kept: "a\nb"
// yields ["a\n", "b"], "a\n" yields ["a\n"], "" yields nothing.
func splitAfterNewlines(text string) []string {
	if text == "" {
		return nil
	}

	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	return parts
}

// LineEnds returns the end offset of every physical line of text: the position
// immediately after each line terminator, plus the text length when the final
// line is unterminated. Empty text has no lines.
func LineEnds(text string) []int {
	ends := make([]int, 0, strings.Count(text, "\n")+1)

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			ends = append(ends, i+1)
		}
	}

	if len(text) > 0 && text[len(text)-1] != '\n' {
		ends = append(ends, len(text))
	}

	return ends
}

// GroupByLine groups a split token stream by the zero-based physical line
// number of text the tokens fall on. Tokens are consumed strictly in order:
// each token belongs to the first line whose end offset exceeds the token's
// start offset. The tokens must be the result of lexing text (and should be
// passed through SplitMultiline first, so no token straddles two lines).
// An empty text yields an empty grouping. Line numbers the lexer emitted no
// tokens for are absent; callers that need a gap-free range apply
// mapx.FrontFill to the result.
func GroupByLine(text string, tokens []Token) map[int][]Token {
	groups := make(map[int][]Token)
	next := 0

	for no, end := range LineEnds(text) {
		for next < len(tokens) && tokens[next].Offset < end {
			groups[no] = append(groups[no], tokens[next])
			next++
		}
	}

	return groups
}
