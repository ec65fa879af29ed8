package lexer

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	lru "github.com/hashicorp/golang-lru/v2"
)

// lexerCacheSize bounds the filename-extension to lexer cache.
const lexerCacheSize = 128

// Lexer selects a chroma lexer by file name and produces offset-tagged token
// streams. Selection is cached per extension. A Lexer is safe to share across
// a batch run once constructed; it holds no per-document state besides the
// selection cache.
type Lexer struct {
	cache *lru.Cache[string, chroma.Lexer]
}

// New returns a Lexer with an empty selection cache.
func New() *Lexer {
	cache, err := lru.New[string, chroma.Lexer](lexerCacheSize)
	if err != nil {
		// lru.New fails only for a non-positive size.
		panic(err)
	}

	return &Lexer{cache: cache}
}

// Lex tokenizes text using the lexer matched to the file name of path.
// The result always reconstitutes text exactly: when no lexer matches, or the
// matched lexer's output does not cover the input, the whole text is returned
// as a single generic text token. Empty text yields no tokens.
func (l *Lexer) Lex(path, text string) []Token {
	if text == "" {
		return nil
	}

	cl := l.lexerFor(path)
	if cl == nil {
		return []Token{{Offset: 0, Kind: chroma.Text, Text: text}}
	}

	iterator, err := cl.Tokenise(nil, text)
	if err != nil {
		return []Token{{Offset: 0, Kind: chroma.Text, Text: text}}
	}

	tokens := make([]Token, 0, strings.Count(text, "\n")+1)
	offset := 0

	for tok := iterator(); tok != chroma.EOF; tok = iterator() {
		tokens = append(tokens, Token{Offset: offset, Kind: tok.Type, Text: tok.Value})
		offset += len(tok.Value)
	}

	// Reconstitution guard: a lexer that drops or invents input would break
	// every downstream offset computation.
	if offset != len(text) {
		return []Token{{Offset: 0, Kind: chroma.Text, Text: text}}
	}

	return tokens
}

// lexerFor returns the cached chroma lexer for the path's file name,
// or nil when chroma knows no lexer for it.
func (l *Lexer) lexerFor(path string) chroma.Lexer {
	base := filepath.Base(path)

	key := strings.ToLower(filepath.Ext(base))
	if key == "" {
		key = strings.ToLower(base)
	}

	cached, ok := l.cache.Get(key)
	if ok {
		return cached
	}

	cl := lexers.Match(base)
	if cl != nil {
		cl = chroma.Coalesce(cl)
	}

	l.cache.Add(key, cl)

	return cl
}
