package gather

import "log/slog"

// FileLineStats summarizes the changed lines of one file in one patch. The
// "+", "-", and combined "+/-" multisets are keyed by "count" and
// "{field}.{value}" (for example "type.code", "purpose.test").
type FileLineStats struct {
	Language string         `json:"language"`
	Type     string         `json:"type"`
	Purpose  string         `json:"purpose"`
	Added    map[string]int `json:"+"`
	Removed  map[string]int `json:"-"`
	Combined map[string]int `json:"+/-"`
}

// PurposesPerFile extracts the purpose list of each changed file in one
// document. The list form keeps room for files appearing more than once.
func PurposesPerFile(name string, doc map[string]any, format Format) map[string][]string {
	result := make(map[string][]string)

	for path, entry := range fileEntries(name, doc, format) {
		result[path] = append(result[path], stringField(entry, "purpose"))
	}

	return result
}

// LinesStats builds per-file line-type statistics for one document. A file
// path appearing more than once in the document is a schema ambiguity: it is
// logged and the counts accumulate into the single record.
func LinesStats(name string, doc map[string]any, format Format) map[string]*FileLineStats {
	result := make(map[string]*FileLineStats)

	for path, entry := range fileEntries(name, doc, format) {
		stats, ok := result[path]
		if ok {
			slog.Warn("file present more than once in annotation document",
				"document", name, "file", path)
		} else {
			stats = &FileLineStats{
				Language: stringField(entry, "language"),
				Type:     stringField(entry, "type"),
				Purpose:  stringField(entry, "purpose"),
				Added:    map[string]int{},
				Removed:  map[string]int{},
				Combined: map[string]int{},
			}
			result[path] = stats
		}

		countSide(stats.Added, stats.Combined, lineRecords(entry, "+"))
		countSide(stats.Removed, stats.Combined, lineRecords(entry, "-"))
	}

	return result
}

func countSide(side, combined map[string]int, lines []map[string]any) {
	for _, line := range lines {
		side["count"]++

		for _, field := range []string{"type", "purpose"} {
			key := field + "." + stringField(line, field)
			side[key]++
			combined[key]++
		}
	}
}
