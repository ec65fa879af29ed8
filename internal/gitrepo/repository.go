// Package gitrepo wraps the libgit2 operations the annotation tooling needs:
// walking commit history, extracting commit metadata, and rendering one
// unified diff per commit.
package gitrepo

import (
	"fmt"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/mtarnawa/diffscope/internal/annotate"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// Open opens a git repository at the given path.
func Open(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the full hex commit hash.
func (c *Commit) Hash() string {
	return c.commit.Id().String()
}

// Parents returns the hex hashes of all parent commits.
func (c *Commit) Parents() []string {
	n := c.commit.ParentCount()
	parents := make([]string, 0, n)

	for i := uint(0); i < n; i++ {
		parents = append(parents, c.commit.ParentId(i).String())
	}

	return parents
}

// Metadata extracts the commit fields attached to annotation documents.
func (c *Commit) Metadata() *annotate.CommitMetadata {
	tree := ""
	if id := c.commit.TreeId(); id != nil {
		tree = id.String()
	}

	return &annotate.CommitMetadata{
		ID:        c.Hash(),
		Parents:   c.Parents(),
		Tree:      tree,
		Author:    signatureOf(c.commit.Author()),
		Committer: signatureOf(c.commit.Committer()),
		Message:   c.commit.Message(),
	}
}

func signatureOf(sig *git2go.Signature) annotate.Signature {
	return annotate.Signature{
		Name:      sig.Name,
		Email:     sig.Email,
		Timestamp: sig.When.Unix(),
		TzInfo:    tzOffset(sig.When),
	}
}

// tzOffset renders a timestamp's UTC offset in git's "+hhmm" notation.
func tzOffset(when time.Time) string {
	return when.Format("-0700")
}

// UnifiedDiff renders the commit's change against its first parent as one
// unified diff with the conventional a/ b/ prefixes. A root commit diffs
// against the empty tree.
func (c *Commit) UnifiedDiff() (string, error) {
	var oldTree *git2go.Tree

	if c.commit.ParentCount() > 0 {
		parent := c.commit.Parent(0)
		defer parent.Free()

		tree, err := parent.Tree()
		if err != nil {
			return "", fmt.Errorf("get parent tree: %w", err)
		}
		defer tree.Free()

		oldTree = tree
	}

	newTree, err := c.commit.Tree()
	if err != nil {
		return "", fmt.Errorf("get commit tree: %w", err)
	}
	defer newTree.Free()

	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return "", fmt.Errorf("get diff options: %w", err)
	}

	diff, err := c.repo.repo.DiffTreeToTree(oldTree, newTree, &opts)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return "", fmt.Errorf("count deltas: %w", err)
	}

	var sb strings.Builder

	for i := 0; i < numDeltas; i++ {
		patch, err := diff.Patch(i)
		if err != nil {
			return "", fmt.Errorf("get patch for delta %d: %w", i, err)
		}

		text, err := patch.String()
		patch.Free()

		if err != nil {
			return "", fmt.Errorf("render patch for delta %d: %w", i, err)
		}

		sb.WriteString(text)
	}

	return sb.String(), nil
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}
