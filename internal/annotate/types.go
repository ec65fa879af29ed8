// Package annotate implements the diff annotation pipeline: parse a unified
// diff, reconstruct each hunk's pre- and post-image, tokenize them, and attach
// a classification to every added and removed line. The output is a nested
// document keyed by changed-file path, serialized as JSON.
package annotate

import (
	"github.com/mtarnawa/diffscope/internal/languages"
	"github.com/mtarnawa/diffscope/internal/lexer"
)

// LineAnnotation classifies one changed line of a hunk. ID is the line's
// position within the hunk's flattened line sequence, counting context lines,
// so the numbering is shared between the added and removed side.
type LineAnnotation struct {
	ID      int           `json:"id"`
	Type    string        `json:"type"`
	Purpose string        `json:"purpose"`
	Tokens  []lexer.Token `json:"tokens"`
}

// FileAnnotation is the annotation of one changed file within a patch. The
// "+" bucket holds post-image additions, the "-" bucket pre-image removals,
// both in hunk order.
type FileAnnotation struct {
	Language string           `json:"language"`
	Type     string           `json:"type"`
	Purpose  string           `json:"purpose"`
	Added    []LineAnnotation `json:"+"`
	Removed  []LineAnnotation `json:"-,"`
}

// PatchAnnotation maps changed-file paths to their annotations. One document
// covers one patch (a commit or a standalone diff file). Additions are keyed
// by the post-image path and removals by the pre-image path, so a rename
// yields two entries; creations and deletions use the single real path.
type PatchAnnotation map[string]*FileAnnotation

// LineCallback overrides the default line classifier. It receives the ordered
// token list of one changed line and returns the classification to use, or
// ok=false to defer to the default.
type LineCallback func(tokens []lexer.Token) (classification string, ok bool)

// Options configure one annotation run. They are fixed before a batch starts
// and treated as read-only for its duration.
type Options struct {
	// PurposeToAnnotation forces a uniform per-line classification for files
	// whose purpose matches, bypassing tokenization entirely.
	PurposeToAnnotation map[string]string

	// LineCallback, when non-nil, is consulted before the default classifier.
	LineCallback LineCallback

	// Languages resolves path metadata. Required.
	Languages *languages.Annotator

	// MissingOK makes a missing diff file a logged skip instead of an error.
	MissingOK bool
}

// DefaultOptions returns the stock configuration: documentation files are
// force-annotated as documentation, everything else is lexed.
func DefaultOptions() Options {
	return Options{
		PurposeToAnnotation: map[string]string{"documentation": "documentation"},
		Languages:           languages.NewAnnotator(nil),
	}
}
