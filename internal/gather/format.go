// Package gather folds annotated-patch JSON documents into dataset-level
// statistics: global purpose counters, per-file line stats, and per-commit
// timeline records. All folds are additive and order-independent, so a
// dataset can be aggregated in any processing order with identical results.
package gather

import (
	"fmt"
	"log/slog"
)

// Format tags the on-disk annotation document layout. Aggregation entry
// points thread it through to small per-version predicates instead of
// guessing from document shape.
//
//   - V1: the document maps file paths to file annotations, nothing else.
//   - V1_5: commit metadata (under the reserved "commit_metadata" key) and
//     flat diff size metrics share the top-level namespace with file entries.
//   - V2: file entries moved under "changes"; "commit_metadata" and
//     "diff_metadata" are separate top-level keys, no mixing possible.
type Format string

const (
	FormatV1   Format = "v1"
	FormatV1_5 Format = "v1.5"
	FormatV2   Format = "v2"
)

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatV1, FormatV1_5, FormatV2:
		return Format(s), nil
	}

	return "", fmt.Errorf("unknown annotation format %q (known: v1, v1.5, v2)", s)
}

// reserved top-level keys of the V1.5 and V2 layouts.
const (
	commitMetadataKey = "commit_metadata"
	diffMetadataKey   = "diff_metadata"
	changesKey        = "changes"
)

// isCommitMetadata reports whether a top-level entry is commit metadata
// rather than changed-file information. In V1.5 a file literally named
// "commit_metadata" is disambiguated by the presence of a "purpose" key.
func isCommitMetadata(key string, value any, format Format) bool {
	switch format {
	case FormatV1:
		return false
	case FormatV1_5:
		m, ok := value.(map[string]any)
		if !ok {
			return false
		}

		_, hasPurpose := m["purpose"]

		return key == commitMetadataKey && !hasPurpose
	default:
		return key == commitMetadataKey
	}
}

// isDiffMetadata reports whether a top-level entry is a diff size metric. The
// V1.5 layout embedded the metrics as flat scalar keys, so anything that is
// not a mapping qualifies.
func isDiffMetadata(key string, value any, format Format) bool {
	switch format {
	case FormatV1:
		return false
	case FormatV1_5:
		_, isMap := value.(map[string]any)

		return !isMap
	default:
		return key == diffMetadataKey
	}
}

// fileEntries extracts the changed-file records of one parsed document,
// skipping metadata entries per the document format. Entries that are not
// JSON objects where one is expected are logged and dropped.
func fileEntries(name string, doc map[string]any, format Format) map[string]map[string]any {
	source := doc

	if format == FormatV2 {
		if changes, ok := doc[changesKey].(map[string]any); ok {
			source = changes
		}
	}

	entries := make(map[string]map[string]any, len(source))

	for key, value := range source {
		if key == changesKey && format == FormatV2 {
			continue
		}

		if isCommitMetadata(key, value, format) || isDiffMetadata(key, value, format) {
			continue
		}

		entry, ok := value.(map[string]any)
		if !ok {
			slog.Warn("skipping malformed file entry", "document", name, "file", key)

			continue
		}

		entries[key] = entry
	}

	return entries
}

// stringField returns a string-valued field of a file entry, or "" when it is
// absent or not a string.
func stringField(entry map[string]any, key string) string {
	s, _ := entry[key].(string)

	return s
}

// lineRecords returns the per-line annotation records of one side bucket
// ("+" or "-") of a file entry.
func lineRecords(entry map[string]any, side string) []map[string]any {
	raw, ok := entry[side].([]any)
	if !ok {
		return nil
	}

	lines := make([]map[string]any, 0, len(raw))

	for _, item := range raw {
		if line, ok := item.(map[string]any); ok {
			lines = append(lines, line)
		}
	}

	return lines
}
