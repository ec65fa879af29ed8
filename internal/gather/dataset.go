package gather

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

// Dataset locates the annotation documents of one dataset tree:
// <Dir>/<bug>/<AnnotationsDir>/<patch>.json, optionally .json.lz4. An empty
// AnnotationsDir reads documents directly from the bug directory.
type Dataset struct {
	Dir            string
	AnnotationsDir string
}

// Bugs lists the bug identifiers (immediate subdirectories), sorted.
func (d Dataset) Bugs() ([]string, error) {
	entries, err := os.ReadDir(d.Dir)
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

// Documents lists the annotation file names of one bug, sorted. Placeholder
// names containing "..." are skipped.
func (d Dataset) Documents(bugID string) ([]string, error) {
	dir := filepath.Join(d.Dir, bugID, d.AnnotationsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading annotations of bug %s: %w", bugID, err)
	}

	var names []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.Contains(name, "...") {
			continue
		}

		if !isAnnotationName(name) {
			slog.Warn("unknown annotation file format", "bug", bugID, "file", name)
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// Load parses one annotation document.
func (d Dataset) Load(bugID, name string) (map[string]any, error) {
	var doc map[string]any

	path := filepath.Join(d.Dir, bugID, d.AnnotationsDir, name)
	if err := jsonstore.Read(path, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func isAnnotationName(name string) bool {
	return strings.HasSuffix(name, ".json") ||
		strings.HasSuffix(name, ".json"+jsonstore.CompressedExt)
}

// BugProgress is invoked once per bug as dataset folds advance, for progress
// reporting.
type BugProgress func(bugID string)

// eachDocument drives a fold over every document of the dataset. Unreadable
// or malformed documents are logged and skipped so one corrupt patch does not
// abort the batch.
func (d Dataset) eachDocument(progress BugProgress, visit func(bugID, name string, doc map[string]any)) error {
	bugs, err := d.Bugs()
	if err != nil {
		return err
	}

	for _, bugID := range bugs {
		names, err := d.Documents(bugID)
		if err != nil {
			slog.Error("skipping bug", "bug", bugID, "error", err)

			continue
		}

		for _, name := range names {
			doc, err := d.Load(bugID, name)
			if err != nil {
				slog.Error("skipping malformed annotation", "bug", bugID, "file", name, "error", err)

				continue
			}

			visit(bugID, name, doc)
		}

		if progress != nil {
			progress(bugID)
		}
	}

	return nil
}

// GatherPurposeCounter folds the whole dataset into one purpose counter.
func (d Dataset) GatherPurposeCounter(format Format, progress BugProgress) (*PurposeCounter, error) {
	result := NewPurposeCounter()

	err := d.eachDocument(progress, func(bugID, name string, doc map[string]any) {
		result.Merge(CountPurposes(filepath.Join(d.Dir, bugID, d.AnnotationsDir, name), doc, format))
	})

	return result, err
}

// GatherPurposePerFile maps every bug and patch to its per-file purposes.
func (d Dataset) GatherPurposePerFile(format Format, progress BugProgress) (map[string]map[string]map[string][]string, error) {
	result := make(map[string]map[string]map[string][]string)

	err := d.eachDocument(progress, func(bugID, name string, doc map[string]any) {
		if result[bugID] == nil {
			result[bugID] = make(map[string]map[string][]string)
		}

		result[bugID][name] = PurposesPerFile(name, doc, format)
	})

	return result, err
}

// GatherLinesStats maps every bug and patch to its per-file line statistics.
func (d Dataset) GatherLinesStats(format Format, progress BugProgress) (map[string]map[string]map[string]*FileLineStats, error) {
	result := make(map[string]map[string]map[string]*FileLineStats)

	err := d.eachDocument(progress, func(bugID, name string, doc map[string]any) {
		if result[bugID] == nil {
			result[bugID] = make(map[string]map[string]*FileLineStats)
		}

		result[bugID][name] = LinesStats(name, doc, format)
	})

	return result, err
}

// GatherTimeline flattens every document into one timeline row carrying its
// bug and patch identifiers.
func (d Dataset) GatherTimeline(format Format, purposeToType map[string]string, progress BugProgress) ([]TimelineRecord, error) {
	var result []TimelineRecord

	err := d.eachDocument(progress, func(bugID, name string, doc map[string]any) {
		record := Timeline(name, doc, format, purposeToType)
		record["bug_id"] = bugID
		record["patch_id"] = name

		result = append(result, record)
	})

	return result, err
}
