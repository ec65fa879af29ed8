package annotate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

// DatasetLayout names the per-bug subdirectories of a dataset tree:
// <dataset>/<bug>/<PatchesDir>/*.diff on the input side and
// <output>/<bug>/<AnnotationsDir>/*.json on the output side.
type DatasetLayout struct {
	PatchesDir     string
	AnnotationsDir string
	Compress       bool
}

// DefaultLayout matches the conventional dataset tree.
func DefaultLayout() DatasetLayout {
	return DatasetLayout{PatchesDir: "patches", AnnotationsDir: "annotation"}
}

// Bug groups the annotated patches of one bug, keyed by patch file name.
type Bug struct {
	ID      string
	Patches map[string]PatchAnnotation
}

// ListBugs returns the bug identifiers of a dataset: the names of its
// immediate subdirectories, sorted for reproducible processing order.
func ListBugs(datasetDir string) ([]string, error) {
	entries, err := os.ReadDir(datasetDir)
	if err != nil {
		return nil, fmt.Errorf("reading dataset directory: %w", err)
	}

	var bugs []string

	for _, entry := range entries {
		if entry.IsDir() {
			bugs = append(bugs, entry.Name())
		}
	}

	sort.Strings(bugs)

	return bugs, nil
}

// AnnotateBug annotates every patch file of one bug. Individual unreadable or
// malformed patches are skipped per the Annotator's error policy; the bug
// itself fails only when its patches directory cannot be listed.
func (a *Annotator) AnnotateBug(datasetDir, bugID string, layout DatasetLayout) (*Bug, error) {
	patchesDir := filepath.Join(datasetDir, bugID, layout.PatchesDir)

	entries, err := os.ReadDir(patchesDir)
	if err != nil {
		return nil, fmt.Errorf("reading patches of bug %s: %w", bugID, err)
	}

	bug := &Bug{ID: bugID, Patches: make(map[string]PatchAnnotation)}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isPatchName(name) {
			continue
		}

		patch, err := a.AnnotateFile(filepath.Join(patchesDir, name))
		if err != nil {
			return nil, err
		}

		bug.Patches[name] = patch
	}

	if len(bug.Patches) == 0 {
		slog.Warn("bug has no patch files", "bug", bugID, "dir", patchesDir)
	}

	return bug, nil
}

// Save writes one JSON document per annotated patch under
// <outputDir>/<bug>/<AnnotationsDir>/, replacing the patch extension.
func (b *Bug) Save(outputDir string, layout DatasetLayout) error {
	annotationsDir := filepath.Join(outputDir, b.ID, layout.AnnotationsDir)

	for name, patch := range b.Patches {
		path := filepath.Join(annotationsDir, annotationName(name, layout.Compress))

		if err := jsonstore.Write(path, patch); err != nil {
			return fmt.Errorf("saving annotation for %s/%s: %w", b.ID, name, err)
		}
	}

	return nil
}

func isPatchName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".diff", ".patch":
		return true
	}

	return false
}

func annotationName(patchName string, compress bool) string {
	name := strings.TrimSuffix(patchName, filepath.Ext(patchName)) + ".json"
	if compress {
		name += jsonstore.CompressedExt
	}

	return name
}
