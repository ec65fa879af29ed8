package annotate

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/mtarnawa/diffscope/internal/lexer"
	"github.com/mtarnawa/diffscope/pkg/mapx"
)

// hunkAnnotator processes the hunks of one changed file. It carries the
// resolved per-side path hints (for lexer selection) and the two entries
// annotations are appended to; src and dst point at the same entry unless
// the file was renamed.
type hunkAnnotator struct {
	opts    *Options
	lexer   *lexer.Lexer
	src     *FileAnnotation
	dst     *FileAnnotation
	purpose string
	srcPath string
	dstPath string
}

// annotate dispatches one hunk to forced or lexed mode. Forced mode is active
// when the file's purpose has a registered annotation override.
func (h *hunkAnnotator) annotate(frag *gitdiff.TextFragment) {
	if forced, ok := h.opts.PurposeToAnnotation[h.purpose]; ok {
		h.annotateForced(frag, forced)

		return
	}

	h.annotateSide(frag, gitdiff.OpDelete, h.srcPath)
	h.annotateSide(frag, gitdiff.OpAdd, h.dstPath)
}

// annotateForced assigns the mapped annotation to every changed line without
// tokenizing. The token list degenerates to a single synthetic token holding
// the raw line text.
func (h *hunkAnnotator) annotateForced(frag *gitdiff.TextFragment, annotation string) {
	for i, line := range frag.Lines {
		if line.Op == gitdiff.OpContext {
			continue
		}

		record := LineAnnotation{
			ID:      i,
			Type:    annotation,
			Purpose: h.purpose,
			Tokens:  []lexer.Token{{Offset: 0, Kind: chroma.Text, Text: line.Line}},
		}

		h.append(line.Op, record)
	}
}

// annotateSide reconstructs one side's image (context lines plus that side's
// changed lines, in hunk order), tokenizes it, realigns tokens to physical
// lines, and classifies every changed line. Context lines participate in the
// image for alignment but produce no annotations.
func (h *hunkAnnotator) annotateSide(frag *gitdiff.TextFragment, op gitdiff.LineOp, pathHint string) {
	var (
		image   strings.Builder
		marks   []lineMark
		imageNo int
	)

	for i, line := range frag.Lines {
		switch line.Op {
		case op:
			marks = append(marks, lineMark{hunkIndex: i, imageLine: imageNo})
			fallthrough
		case gitdiff.OpContext:
			image.WriteString(line.Line)
			imageNo++
		}
	}

	if len(marks) == 0 {
		return
	}

	text := image.String()
	tokens := lexer.SplitMultiline(h.lexer.Lex(pathHint, text))
	groups := mapx.FrontFill(lexer.GroupByLine(text, tokens))

	for _, mark := range marks {
		lineTokens := groups[mark.imageLine]

		record := LineAnnotation{
			ID:      mark.hunkIndex,
			Type:    h.opts.classify(lineTokens),
			Purpose: h.purpose,
			Tokens:  lineTokens,
		}

		h.append(op, record)
	}
}

// append routes a record to the entry owning its side: additions belong to
// the post-image path, removals to the pre-image path.
func (h *hunkAnnotator) append(op gitdiff.LineOp, record LineAnnotation) {
	switch op {
	case gitdiff.OpAdd:
		h.dst.Added = append(h.dst.Added, record)
	case gitdiff.OpDelete:
		h.src.Removed = append(h.src.Removed, record)
	}
}

// lineMark links a changed line's hunk-local index (the annotation id) to its
// zero-based line number within the reconstructed side image.
type lineMark struct {
	hunkIndex int
	imageLine int
}
