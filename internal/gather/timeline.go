package gather

import (
	"log/slog"

	"github.com/mtarnawa/diffscope/pkg/mapx"
)

// TimelineRecord is one flattened row of the dataset timeline: namespaced
// counters ("+:count", "-:type.code", "language:Python"), diff size metrics
// ("diff.n_files"), and un-namespaced commit metadata ("author.timestamp",
// "n_parents"). Dataset-level gathering adds "bug_id" and "patch_id".
type TimelineRecord map[string]any

// Timeline flattens one annotation document into a single record. The
// optional purposeToType mapping substitutes the effective line type used for
// counting when the owning file's purpose matches; line purposes and the
// displayed metadata are unaffected.
func Timeline(name string, doc map[string]any, format Format, purposeToType map[string]string) TimelineRecord {
	counters := map[string]int{}
	metadata := map[string]any{}

	collectDiffMetadata(doc, format, metadata)
	collectCommitMetadata(name, doc, format, metadata)

	for _, entry := range fileEntries(name, doc, format) {
		counters["file_names"]++

		for _, field := range []string{"language", "type", "purpose"} {
			counters[field+":"+stringField(entry, field)]++
		}

		filePurpose := stringField(entry, "purpose")

		for _, side := range []string{"+", "-"} {
			for _, line := range lineRecords(entry, side) {
				counters[side+":count"]++

				lineType := stringField(line, "type")
				if forced, ok := purposeToType[filePurpose]; ok {
					lineType = forced
				}

				counters[side+":type."+lineType]++
				counters[side+":purpose."+stringField(line, "purpose")]++
			}
		}
	}

	record := make(map[string]any, len(counters)+len(metadata))

	for key, count := range counters {
		record[key] = count
	}

	return mapx.DeepMerge(record, metadata)
}

// collectDiffMetadata copies whole-patch size metrics into the record under
// "diff."-prefixed keys.
func collectDiffMetadata(doc map[string]any, format Format, metadata map[string]any) {
	switch format {
	case FormatV1:
	case FormatV1_5:
		for key, value := range doc {
			if isDiffMetadata(key, value, format) {
				metadata["diff."+key] = value
			}
		}
	default:
		if diff, ok := doc[diffMetadataKey].(map[string]any); ok {
			for key, value := range diff {
				metadata["diff."+key] = value
			}
		}
	}
}

// collectCommitMetadata extracts authorship fields and the parent count. A
// V1.5 entry can be a changed file that merely shares the reserved name; it
// is flagged and stays in the file entries, but any authorship fields mixed
// into it are still extracted.
func collectCommitMetadata(name string, doc map[string]any, format Format, metadata map[string]any) {
	if format == FormatV1 {
		return
	}

	commit, ok := doc[commitMetadataKey].(map[string]any)
	if !ok {
		return
	}

	if !isCommitMetadata(commitMetadataKey, commit, format) {
		slog.Warn("found changed file named like commit metadata", "document", name)
	}

	for _, role := range []string{"author", "committer"} {
		authorship, ok := commit[role].(map[string]any)
		if !ok {
			continue
		}

		for _, field := range []string{"timestamp", "tz_info", "name", "email"} {
			if value, ok := authorship[field]; ok {
				metadata[role+"."+field] = value
			}
		}
	}

	if parents, ok := commit["parents"].([]any); ok {
		metadata["n_parents"] = len(parents)
	}
}
