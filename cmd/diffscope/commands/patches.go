package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mtarnawa/diffscope/internal/config"
	"github.com/mtarnawa/diffscope/internal/gitrepo"
	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

// PatchesCommand holds the flags for the patches command.
type PatchesCommand struct {
	configPath *string

	startRev    string
	limit       int
	since       string
	firstParent bool
	fanout      bool
}

// NewPatchesCommand creates and configures the patches command.
func NewPatchesCommand(configPath *string) *cobra.Command {
	c := &PatchesCommand{configPath: configPath}

	cobraCmd := &cobra.Command{
		Use:   "patches REPO_PATH OUTPUT_DIR",
		Short: "Export one unified diff per commit of a repository",
		Long: `Export one unified diff per commit of a repository.

Each commit becomes <OUTPUT_DIR>/<hash>.diff (sharded by hash prefix with
--fanout), diffed against its first parent, ready for later annotation.`,
		Args: cobra.ExactArgs(2),
		RunE: c.Run,
	}

	cobraCmd.Flags().StringVar(&c.startRev, "start-rev", "", "revision to walk from (default: HEAD)")
	cobraCmd.Flags().IntVar(&c.limit, "limit", 0, "max number of commits to export (0: unlimited)")
	cobraCmd.Flags().StringVar(&c.since, "since", "", "skip commits before this date (YYYY-MM-DD or RFC 3339)")
	cobraCmd.Flags().BoolVar(&c.firstParent, "first-parent", false, "follow only first parents")
	cobraCmd.Flags().BoolVar(&c.fanout, "fanout", false, "shard output by hash prefix (ab/cdef...)")

	return cobraCmd
}

// Run executes the patches command. Commits whose diff cannot be rendered are
// logged and skipped.
func (c *PatchesCommand) Run(_ *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(*c.configPath)
	if err != nil {
		return err
	}

	repoPath, outputDir := args[0], args[1]

	repo, err := gitrepo.Open(repoPath)
	if err != nil {
		return err
	}
	defer repo.Free()

	walkOpts := gitrepo.WalkOptions{
		StartRev:    cfg.Repo.StartRev,
		Limit:       cfg.Repo.Limit,
		FirstParent: c.firstParent || cfg.Repo.FirstParent,
	}

	if c.startRev != "" {
		walkOpts.StartRev = c.startRev
	}

	if c.limit > 0 {
		walkOpts.Limit = c.limit
	}

	if walkOpts.Since, err = parseSince(c.since); err != nil {
		return err
	}

	fanout := c.fanout || cfg.Repo.Fanout

	pw, tracker := startProgress("commits", int64(walkOpts.Limit))
	defer stopProgress(pw, tracker)

	var exported, skipped int

	err = repo.Walk(walkOpts, func(commit *gitrepo.Commit) error {
		diffText, err := commit.UnifiedDiff()
		if err != nil {
			slog.Error("skipping commit", "commit", commit.Hash(), "error", err)
			skipped++

			return nil
		}

		path := patchPath(outputDir, commit.Hash(), fanout)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}

		if err := os.WriteFile(path, []byte(diffText), 0o644); err != nil {
			return err
		}

		exported++
		tracker.Increment(1)

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("patches exported",
		"commits", humanize.Comma(int64(exported)), "skipped", skipped, "output", outputDir)

	return nil
}

// parseSince accepts the date forms git users reach for first: a plain day
// or a full RFC 3339 timestamp.
func parseSince(arg string) (time.Time, error) {
	if arg == "" {
		return time.Time{}, nil
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, arg); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse --since date %q", arg)
}

func patchPath(outputDir, hash string, fanout bool) string {
	if fanout {
		return jsonstore.Fanout(outputDir, hash, ".diff")
	}

	return filepath.Join(outputDir, hash+".diff")
}
