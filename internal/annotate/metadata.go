package annotate

import "github.com/bluekeyes/go-gitdiff/gitdiff"

// Signature identifies an author or committer together with the commit time.
// TzInfo keeps the UTC offset in git's "+hhmm" notation.
type Signature struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
	TzInfo    string `json:"tz_info"`
}

// CommitMetadata is the commit-level context attached to annotations produced
// from a repository walk. Standalone diff files have none.
type CommitMetadata struct {
	ID        string    `json:"id"`
	Parents   []string  `json:"parents"`
	Tree      string    `json:"tree,omitempty"`
	Author    Signature `json:"author"`
	Committer Signature `json:"committer"`
	Message   string    `json:"message,omitempty"`
}

// DiffMetadata holds whole-patch size metrics.
type DiffMetadata struct {
	NFiles        int   `json:"n_files"`
	NHunks        int   `json:"n_hunks"`
	NLinesAdded   int64 `json:"n_lines_added"`
	NLinesRemoved int64 `json:"n_lines_removed"`
	NLinesAll     int   `json:"n_lines_all"`
	PatchSize     int64 `json:"patch_size"`
}

// MeasureDiff computes size metrics over a parsed patch.
func MeasureDiff(files []*gitdiff.File) DiffMetadata {
	var m DiffMetadata

	m.NFiles = len(files)

	for _, file := range files {
		m.NHunks += len(file.TextFragments)

		for _, frag := range file.TextFragments {
			m.NLinesAdded += frag.LinesAdded
			m.NLinesRemoved += frag.LinesDeleted
			m.NLinesAll += len(frag.Lines)
		}
	}

	m.PatchSize = m.NLinesAdded + m.NLinesRemoved

	return m
}

// Document is the on-disk shape of one annotated patch in the current format:
// commit and diff metadata are separated from the per-file changes instead of
// sharing the top-level namespace with them.
type Document struct {
	Commit  *CommitMetadata `json:"commit_metadata,omitempty"`
	Diff    *DiffMetadata   `json:"diff_metadata,omitempty"`
	Changes PatchAnnotation `json:"changes"`
}

// NewDocument assembles a Document from a parsed patch and optional commit
// metadata.
func (a *Annotator) NewDocument(files []*gitdiff.File, commit *CommitMetadata) *Document {
	diff := MeasureDiff(files)

	return &Document{
		Commit:  commit,
		Diff:    &diff,
		Changes: a.AnnotatePatch(files),
	}
}
