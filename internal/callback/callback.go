// Package callback compiles user-supplied line-classifier overrides. The
// override is a single expression in the expr language, evaluated once per
// changed line with the line's token list bound to `tokens`. An expression
// returning a string replaces the default classification; returning nil
// defers to it.
//
// Example: classify any line mentioning a FIXME marker as documentation:
//
//	any(tokens, {.Text contains "FIXME"}) ? "documentation" : nil
package callback

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mtarnawa/diffscope/internal/lexer"
)

// env is the static type environment the expression is checked against.
type env struct {
	Tokens []lexer.Token `expr:"tokens"`
}

// Compile turns expression source into a line callback. Compilation errors
// are configuration errors and surface immediately, before any patch is
// processed. A leading "return " is stripped so statement-style snippets
// carried over from older configurations keep working.
func Compile(source string) (func([]lexer.Token) (string, bool), error) {
	source = strings.TrimSpace(source)
	source = strings.TrimPrefix(source, "return ")

	if source == "" {
		return nil, fmt.Errorf("empty line-callback expression")
	}

	program, err := expr.Compile(source, expr.Env(env{}))
	if err != nil {
		return nil, fmt.Errorf("compiling line callback: %w", err)
	}

	return func(tokens []lexer.Token) (string, bool) {
		return run(program, tokens)
	}, nil
}

// CompileFile loads expression source from a file and compiles it.
func CompileFile(path string) (func([]lexer.Token) (string, bool), error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading line-callback file: %w", err)
	}

	return Compile(string(source))
}

// CompileArg treats arg as a file path when one exists, and as inline
// expression source otherwise.
func CompileArg(arg string) (func([]lexer.Token) (string, bool), error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return CompileFile(arg)
	}

	return Compile(arg)
}

// run evaluates the compiled expression for one line. Runtime failures defer
// to the default classifier rather than aborting the batch.
func run(program *vm.Program, tokens []lexer.Token) (string, bool) {
	out, err := expr.Run(program, env{Tokens: tokens})
	if err != nil {
		slog.Warn("line callback failed, using default classification", "error", err)

		return "", false
	}

	if s, ok := out.(string); ok {
		return s, true
	}

	return "", false
}
