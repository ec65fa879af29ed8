package annotate

import "github.com/mtarnawa/diffscope/internal/lexer"

// ClassifyLine applies the default line classification: a line is
// "documentation" iff it has tokens and every one is comment-like or
// whitespace-only, and "code" otherwise.
func ClassifyLine(tokens []lexer.Token) string {
	if len(tokens) == 0 {
		return "code"
	}

	for _, tok := range tokens {
		if !tok.IsCommentLike() && !tok.IsWhitespaceOnly() {
			return "code"
		}
	}

	return "documentation"
}

// classify runs the configured callback first, falling back to ClassifyLine
// when no callback is set or the callback defers.
func (o *Options) classify(tokens []lexer.Token) string {
	if o.LineCallback != nil {
		if classification, ok := o.LineCallback(tokens); ok {
			return classification
		}
	}

	return ClassifyLine(tokens)
}
