package gather

import "github.com/mtarnawa/diffscope/pkg/mapx"

// PurposeCounter accumulates purpose statistics over annotated patches. It
// forms a commutative monoid under Merge, with NewPurposeCounter as identity,
// so documents can be folded in any order.
type PurposeCounter struct {
	ProcessedFiles      []string       `json:"processed_files"`
	HunkPurposes        map[string]int `json:"hunk_purposes"`
	AddedLinePurposes   map[string]int `json:"added_line_purposes"`
	RemovedLinePurposes map[string]int `json:"removed_line_purposes"`
}

// NewPurposeCounter returns the empty (identity) counter.
func NewPurposeCounter() *PurposeCounter {
	return &PurposeCounter{
		ProcessedFiles:      []string{},
		HunkPurposes:        map[string]int{},
		AddedLinePurposes:   map[string]int{},
		RemovedLinePurposes: map[string]int{},
	}
}

// Merge folds other into c. Counts add, processed-file lists concatenate.
func (c *PurposeCounter) Merge(other *PurposeCounter) {
	c.ProcessedFiles = append(c.ProcessedFiles, other.ProcessedFiles...)
	mapx.MergeAdditive(c.HunkPurposes, other.HunkPurposes)
	mapx.MergeAdditive(c.AddedLinePurposes, other.AddedLinePurposes)
	mapx.MergeAdditive(c.RemovedLinePurposes, other.RemovedLinePurposes)
}

// CountPurposes builds the counter contribution of one annotation document:
// one increment per changed file keyed by file purpose, and one per
// added/removed line keyed by line purpose.
func CountPurposes(name string, doc map[string]any, format Format) *PurposeCounter {
	result := NewPurposeCounter()
	result.ProcessedFiles = append(result.ProcessedFiles, name)

	for _, entry := range fileEntries(name, doc, format) {
		result.HunkPurposes[stringField(entry, "purpose")]++

		for _, line := range lineRecords(entry, "+") {
			result.AddedLinePurposes[stringField(line, "purpose")]++
		}

		for _, line := range lineRecords(entry, "-") {
			result.RemovedLinePurposes[stringField(line, "purpose")]++
		}
	}

	return result
}
