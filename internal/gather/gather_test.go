package gather

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

func lineRecord(id int, lineType, purpose string) map[string]any {
	return map[string]any{
		"id":      float64(id),
		"type":    lineType,
		"purpose": purpose,
		"tokens":  []any{[]any{float64(0), "Text", "x\n"}},
	}
}

func fileEntry(language, fileType, purpose string, added, removed []any) map[string]any {
	return map[string]any{
		"language": language,
		"type":     fileType,
		"purpose":  purpose,
		"+":        added,
		"-":        removed,
	}
}

// docV1 has one programming file (1 added, 1 removed line) and one test file
// (1 added line).
func docV1() map[string]any {
	return map[string]any{
		"keras/engine/training_utils.py": fileEntry("Python", "programming", "programming",
			[]any{lineRecord(2, "code", "programming")},
			[]any{lineRecord(1, "code", "programming")}),
		"tests/keras/engine/test_training.py": fileEntry("Python", "programming", "test",
			[]any{lineRecord(4, "code", "test")},
			[]any{}),
	}
}

func commitMetadata() map[string]any {
	return map[string]any{
		"id":      "e54746bd",
		"parents": []any{"93b61589"},
		"author": map[string]any{
			"name":      "A U Thor",
			"email":     "author@example.com",
			"timestamp": float64(1611763190),
			"tz_info":   "-0500",
		},
		"committer": map[string]any{
			"name":      "C O Mitter",
			"email":     "committer@example.com",
			"timestamp": float64(1611763200),
			"tz_info":   "-0500",
		},
	}
}

func docV15() map[string]any {
	doc := docV1()
	doc["commit_metadata"] = commitMetadata()
	doc["n_files"] = float64(2)
	doc["patch_size"] = float64(3)

	return doc
}

func docV2() map[string]any {
	return map[string]any{
		"commit_metadata": commitMetadata(),
		"diff_metadata":   map[string]any{"n_files": float64(2), "patch_size": float64(3)},
		"changes":         docV1(),
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"v1", "v1.5", "v2"} {
		got, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), got)
	}

	_, err := ParseFormat("v3")
	assert.Error(t, err)
}

func TestFileEntries(t *testing.T) {
	t.Parallel()

	t.Run("v1_takes_everything", func(t *testing.T) {
		t.Parallel()

		assert.Len(t, fileEntries("doc", docV1(), FormatV1), 2)
	})

	t.Run("v1_5_skips_mixed_in_metadata", func(t *testing.T) {
		t.Parallel()

		entries := fileEntries("doc", docV15(), FormatV1_5)

		assert.Len(t, entries, 2)
		assert.NotContains(t, entries, "commit_metadata")
		assert.NotContains(t, entries, "n_files")
	})

	t.Run("v1_5_keeps_changed_file_named_commit_metadata", func(t *testing.T) {
		t.Parallel()

		doc := docV1()
		doc["commit_metadata"] = fileEntry("Text", "prose", "documentation", []any{}, []any{})

		assert.Contains(t, fileEntries("doc", doc, FormatV1_5), "commit_metadata")
	})

	t.Run("v2_reads_the_changes_key", func(t *testing.T) {
		t.Parallel()

		entries := fileEntries("doc", docV2(), FormatV2)

		assert.Len(t, entries, 2)
		assert.Contains(t, entries, "keras/engine/training_utils.py")
	})
}

func TestPurposeCounter(t *testing.T) {
	t.Parallel()

	t.Run("counts_one_document", func(t *testing.T) {
		t.Parallel()

		got := CountPurposes("bug-1/annotation/a.json", docV1(), FormatV1)

		assert.Equal(t, []string{"bug-1/annotation/a.json"}, got.ProcessedFiles)
		assert.Equal(t, map[string]int{"programming": 1, "test": 1}, got.HunkPurposes)
		assert.Equal(t, map[string]int{"programming": 1, "test": 1}, got.AddedLinePurposes)
		assert.Equal(t, map[string]int{"programming": 1}, got.RemovedLinePurposes)
	})

	t.Run("merge_is_commutative", func(t *testing.T) {
		t.Parallel()

		a := CountPurposes("a.json", docV1(), FormatV1)
		b := CountPurposes("b.json", docV15(), FormatV1_5)

		ab := NewPurposeCounter()
		ab.Merge(a)
		ab.Merge(b)

		ba := NewPurposeCounter()
		ba.Merge(b)
		ba.Merge(a)

		assert.Equal(t, ab.HunkPurposes, ba.HunkPurposes)
		assert.Equal(t, ab.AddedLinePurposes, ba.AddedLinePurposes)
		assert.Equal(t, ab.RemovedLinePurposes, ba.RemovedLinePurposes)
		assert.ElementsMatch(t, ab.ProcessedFiles, ba.ProcessedFiles)
	})

	t.Run("identity_element_is_neutral", func(t *testing.T) {
		t.Parallel()

		a := CountPurposes("a.json", docV1(), FormatV1)

		merged := NewPurposeCounter()
		merged.Merge(NewPurposeCounter())
		merged.Merge(a)

		assert.Equal(t, a, merged)
	})
}

func TestLinesStats(t *testing.T) {
	t.Parallel()

	stats := LinesStats("a.json", docV1(), FormatV1)

	require.Contains(t, stats, "keras/engine/training_utils.py")
	file := stats["keras/engine/training_utils.py"]

	assert.Equal(t, "Python", file.Language)
	assert.Equal(t, map[string]int{"count": 1, "type.code": 1, "purpose.programming": 1}, file.Added)
	assert.Equal(t, map[string]int{"count": 1, "type.code": 1, "purpose.programming": 1}, file.Removed)
	assert.Equal(t, map[string]int{"type.code": 2, "purpose.programming": 2}, file.Combined)
}

func TestPurposesPerFile(t *testing.T) {
	t.Parallel()

	got := PurposesPerFile("a.json", docV1(), FormatV1)

	assert.Equal(t, map[string][]string{
		"keras/engine/training_utils.py":      {"programming"},
		"tests/keras/engine/test_training.py": {"test"},
	}, got)
}

func TestTimeline(t *testing.T) {
	t.Parallel()

	t.Run("flattens_files_and_metadata", func(t *testing.T) {
		t.Parallel()

		record := Timeline("a.json", docV2(), FormatV2, nil)

		assert.Equal(t, 2, record["file_names"])
		assert.Equal(t, 2, record["language:Python"])
		assert.Equal(t, 1, record["purpose:test"])
		assert.Equal(t, 2, record["+:count"])
		assert.Equal(t, 1, record["-:count"])
		assert.Equal(t, 2, record["+:type.code"])
		assert.Equal(t, 1, record["+:purpose.test"])

		assert.Equal(t, float64(1611763190), record["author.timestamp"])
		assert.Equal(t, "-0500", record["committer.tz_info"])
		assert.Equal(t, 1, record["n_parents"])
		assert.Equal(t, float64(2), record["diff.n_files"])
	})

	t.Run("purpose_to_type_remaps_counted_line_type", func(t *testing.T) {
		t.Parallel()

		record := Timeline("a.json", docV1(), FormatV1, map[string]string{"test": "test"})

		assert.Equal(t, 1, record["+:type.test"])
		assert.Equal(t, 1, record["+:type.code"])
		assert.Equal(t, 1, record["+:purpose.test"])
	})

	t.Run("v1_5_flat_metrics_become_diff_keys", func(t *testing.T) {
		t.Parallel()

		record := Timeline("a.json", docV15(), FormatV1_5, nil)

		assert.Equal(t, float64(2), record["diff.n_files"])
		assert.Equal(t, float64(3), record["diff.patch_size"])
	})

	t.Run("file_named_commit_metadata_still_yields_mixed_in_fields", func(t *testing.T) {
		t.Parallel()

		entry := fileEntry("Text", "prose", "documentation",
			[]any{lineRecord(0, "documentation", "documentation")}, []any{})
		entry["author"] = map[string]any{"timestamp": float64(1611763190), "name": "A U Thor"}
		entry["parents"] = []any{"93b61589"}

		doc := docV1()
		doc["commit_metadata"] = entry

		record := Timeline("a.json", doc, FormatV1_5, nil)

		// Counted as a changed file and mined for authorship fields.
		assert.Equal(t, 3, record["file_names"])
		assert.Equal(t, 1, record["purpose:documentation"])
		assert.Equal(t, float64(1611763190), record["author.timestamp"])
		assert.Equal(t, "A U Thor", record["author.name"])
		assert.Equal(t, 1, record["n_parents"])
	})
}

func TestDatasetGather(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataset := Dataset{Dir: dir, AnnotationsDir: "annotation"}

	write := func(bug, name string, doc map[string]any) {
		path := filepath.Join(dir, bug, "annotation", name)
		require.NoError(t, jsonstore.Write(path, doc))
	}

	write("BUG-1", "first.json", docV1())
	write("BUG-1", "second.json", docV1())
	write("BUG-2", "third.json", docV1())

	t.Run("bugs_and_documents_are_sorted", func(t *testing.T) {
		bugs, err := dataset.Bugs()
		require.NoError(t, err)
		assert.Equal(t, []string{"BUG-1", "BUG-2"}, bugs)

		docs, err := dataset.Documents("BUG-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"first.json", "second.json"}, docs)
	})

	t.Run("purpose_counter_fold", func(t *testing.T) {
		var seen []string

		got, err := dataset.GatherPurposeCounter(FormatV1, func(bugID string) {
			seen = append(seen, bugID)
		})
		require.NoError(t, err)

		assert.Len(t, got.ProcessedFiles, 3)
		assert.Equal(t, map[string]int{"programming": 3, "test": 3}, got.HunkPurposes)
		assert.Equal(t, []string{"BUG-1", "BUG-2"}, seen)
	})

	t.Run("timeline_fold_tags_rows", func(t *testing.T) {
		rows, err := dataset.GatherTimeline(FormatV1, nil, nil)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "BUG-1", rows[0]["bug_id"])
		assert.Equal(t, "first.json", rows[0]["patch_id"])
	})

	t.Run("lines_stats_fold", func(t *testing.T) {
		stats, err := dataset.GatherLinesStats(FormatV1, nil)
		require.NoError(t, err)

		require.Contains(t, stats, "BUG-2")
		assert.Contains(t, stats["BUG-2"]["third.json"], "keras/engine/training_utils.py")
	})
}

func TestValidateDocument(t *testing.T) {
	t.Parallel()

	t.Run("well_formed_document_passes", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, ValidateDocument("a.json", docV1(), FormatV1))
	})

	t.Run("missing_fields_are_reported", func(t *testing.T) {
		t.Parallel()

		doc := map[string]any{
			"broken.py": map[string]any{"language": "Python"},
		}

		err := ValidateDocument("a.json", doc, FormatV1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.py")
	})
}
