package gitrepo

import (
	"errors"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrStopWalk stops a history walk early without reporting an error.
var ErrStopWalk = errors.New("stop walk")

// WalkOptions bound a history walk.
type WalkOptions struct {
	// StartRev is the revision to walk from; empty means HEAD.
	StartRev string

	// Limit caps the number of visited commits; zero means unlimited.
	Limit int

	// Since skips commits committed before the given time; the zero value
	// disables the filter. Skipped commits do not count against Limit.
	Since time.Time

	// FirstParent follows only first parents, like git log --first-parent.
	FirstParent bool
}

// Walk visits commits in time-and-topology order, newest first, calling fn
// for each. The commit passed to fn is freed after the callback returns.
func (r *Repository) Walk(opts WalkOptions, fn func(*Commit) error) error {
	walk, err := r.repo.Walk()
	if err != nil {
		return fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	if opts.FirstParent {
		walk.SimplifyFirstParent()
	}

	if err := r.pushStart(walk, opts.StartRev); err != nil {
		return err
	}

	var (
		visited int
		walkErr error
	)

	err = walk.Iterate(func(commit *git2go.Commit) bool {
		if opts.Limit > 0 && visited >= opts.Limit {
			commit.Free()

			return false
		}

		if !opts.Since.IsZero() && commit.Committer().When.Before(opts.Since) {
			commit.Free()

			return true
		}
		visited++

		wrapped := &Commit{commit: commit, repo: r}
		defer wrapped.Free()

		if err := fn(wrapped); err != nil {
			walkErr = err

			return false
		}

		return true
	})
	if err != nil {
		return fmt.Errorf("revwalk iterate: %w", err)
	}

	if errors.Is(walkErr, ErrStopWalk) {
		return nil
	}

	return walkErr
}

func (r *Repository) pushStart(walk *git2go.RevWalk, startRev string) error {
	if startRev == "" {
		head, err := r.repo.Head()
		if err != nil {
			return fmt.Errorf("get HEAD: %w", err)
		}
		defer head.Free()

		if err := walk.Push(head.Target()); err != nil {
			return fmt.Errorf("push HEAD to revwalk: %w", err)
		}

		return nil
	}

	obj, err := r.repo.RevparseSingle(startRev)
	if err != nil {
		return fmt.Errorf("resolve revision %q: %w", startRev, err)
	}
	defer obj.Free()

	commit, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return fmt.Errorf("revision %q is not a commit: %w", startRev, err)
	}
	defer commit.Free()

	if err := walk.Push(commit.Id()); err != nil {
		return fmt.Errorf("push %q to revwalk: %w", startRev, err)
	}

	return nil
}
