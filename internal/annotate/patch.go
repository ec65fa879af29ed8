package annotate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/mtarnawa/diffscope/internal/languages"
	"github.com/mtarnawa/diffscope/internal/lexer"
	"github.com/mtarnawa/diffscope/pkg/mapx"
)

// Annotator turns parsed unified diffs into PatchAnnotation documents. It is
// safe for concurrent use across patches once constructed.
type Annotator struct {
	opts  Options
	lexer *lexer.Lexer
}

// New returns an Annotator with the given options. A nil language collaborator
// is replaced by the default one. The override mapping is copied, so callers
// mutating their map after construction cannot affect a running batch.
func New(opts Options) *Annotator {
	if opts.Languages == nil {
		opts.Languages = languages.NewAnnotator(nil)
	}

	opts.PurposeToAnnotation = mapx.Clone(opts.PurposeToAnnotation)

	return &Annotator{opts: opts, lexer: lexer.New()}
}

// AnnotatePatch annotates every changed file of one parsed patch. Files are
// processed in patch order; hunks within a file in hunk order.
func (a *Annotator) AnnotatePatch(files []*gitdiff.File) PatchAnnotation {
	patch := make(PatchAnnotation, len(files))

	for _, file := range files {
		a.annotateFile(patch, file)
	}

	return patch
}

// AnnotateDiff parses a unified diff from r and annotates it.
func (a *Annotator) AnnotateDiff(r io.Reader) (PatchAnnotation, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	return a.AnnotatePatch(files), nil
}

// AnnotateFile reads and annotates one diff file. Unreadable or malformed
// inputs are logged and yield an empty document so a batch run can continue;
// a missing file is a hard error unless MissingOK is set.
func (a *Annotator) AnnotateFile(path string) (PatchAnnotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return a.skipOrFail(path, err)
	}
	defer f.Close()

	patch, err := a.AnnotateDiff(f)
	if err != nil {
		slog.Error("cannot parse diff file", "path", path, "error", err)

		return PatchAnnotation{}, nil
	}

	return patch, nil
}

// skipOrFail implements the open-error policy: not-found honors MissingOK,
// directories and permission problems are named distinctly and skipped.
func (a *Annotator) skipOrFail(path string, err error) (PatchAnnotation, error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !a.opts.MissingOK {
			return nil, fmt.Errorf("diff file not found: %w", err)
		}

		slog.Error("diff file does not exist", "path", path)
	case errors.Is(err, fs.ErrPermission):
		slog.Error("diff file not readable", "path", path, "error", err)
	default:
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			slog.Error("expected diff file, found directory", "path", path)
		} else {
			slog.Error("cannot open diff file", "path", path, "error", err)
		}
	}

	return PatchAnnotation{}, nil
}

// annotateFile seeds FileAnnotation entries with language metadata and runs
// the hunk annotator over every fragment. A rename produces two entries, each
// with its own path metadata: removed lines land under the pre-image path and
// added lines under the post-image path. Creations and deletions collapse to
// the single real path.
func (a *Annotator) annotateFile(patch PatchAnnotation, file *gitdiff.File) {
	srcPath := diffPath(file.OldName)
	dstPath := diffPath(file.NewName)

	srcKey, dstKey := srcPath, dstPath
	if srcKey == languages.DevNull {
		srcKey = dstPath
	}

	if dstKey == languages.DevNull {
		dstKey = srcPath
	}

	src := a.seed(patch, srcKey)

	dst := src
	if dstKey != srcKey {
		dst = a.seed(patch, dstKey)
	}

	// The purpose steering classification comes from the pre-image path,
	// unless the file is being created.
	purpose := src.Purpose
	if srcPath == languages.DevNull {
		purpose = dst.Purpose
	}

	h := hunkAnnotator{
		opts:    &a.opts,
		lexer:   a.lexer,
		src:     src,
		dst:     dst,
		purpose: purpose,
		srcPath: srcPath,
		dstPath: dstPath,
	}

	for _, frag := range file.TextFragments {
		h.annotate(frag)
	}
}

func (a *Annotator) seed(patch PatchAnnotation, path string) *FileAnnotation {
	entry, ok := patch[path]
	if !ok {
		info := a.opts.Languages.Annotate(path)
		entry = &FileAnnotation{
			Language: info.Language,
			Type:     info.Type,
			Purpose:  info.Purpose,
			Added:    []LineAnnotation{},
			Removed:  []LineAnnotation{},
		}
		patch[path] = entry
	}

	return entry
}

// diffPath normalizes go-gitdiff's empty name (used for /dev/null sides of
// creations and deletions) back to the conventional path.
func diffPath(name string) string {
	if name == "" {
		return languages.DevNull
	}

	return name
}
