package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mtarnawa/diffscope/internal/annotate"
	"github.com/mtarnawa/diffscope/internal/callback"
	"github.com/mtarnawa/diffscope/internal/config"
	"github.com/mtarnawa/diffscope/internal/gitrepo"
	"github.com/mtarnawa/diffscope/internal/jsonstore"
	"github.com/mtarnawa/diffscope/internal/languages"
)

// AnnotateCommand holds the flags for the annotate command group.
type AnnotateCommand struct {
	configPath *string

	purposeToAnnotation []string
	extToLanguage       []string
	lineCallback        string
	missingOK           bool
	compress            bool

	patchesDir     string
	annotationsDir string
	outputPrefix   string

	startRev    string
	limit       int
	since       string
	firstParent bool
	fanout      bool
}

// NewAnnotateCommand creates and configures the annotate command group.
func NewAnnotateCommand(configPath *string) *cobra.Command {
	c := &AnnotateCommand{configPath: configPath}

	cobraCmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate diff files, dataset trees, or repository history",
	}

	flags := cobraCmd.PersistentFlags()
	flags.StringArrayVar(&c.purposeToAnnotation, "purpose-to-annotation", nil,
		"PURPOSE:ANNOTATION pair forcing per-line annotation; '' resets the mapping")
	flags.StringArrayVar(&c.extToLanguage, "ext-to-language", nil,
		"EXT:LANGUAGE pair overriding language detection; '' resets the mapping")
	flags.StringVar(&c.lineCallback, "line-callback", "",
		"expression (inline or file path) overriding the line classifier")
	flags.BoolVar(&c.missingOK, "missing-ok", false, "skip missing diff files instead of failing")
	flags.BoolVar(&c.compress, "compress", false, "write annotations LZ4-compressed")

	cobraCmd.AddCommand(c.newPatchCommand())
	cobraCmd.AddCommand(c.newDatasetCommand())
	cobraCmd.AddCommand(c.newFromRepoCommand())

	return cobraCmd
}

func (c *AnnotateCommand) newPatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "patch PATCH_FILE RESULT_JSON",
		Short: "Annotate a single diff file",
		Args:  cobra.ExactArgs(2),
		RunE:  c.RunPatch,
	}
}

func (c *AnnotateCommand) newDatasetCommand() *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "dataset DATASET_DIR...",
		Short: "Annotate every bug of one or more dataset trees",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.RunDataset,
	}

	cobraCmd.Flags().StringVar(&c.patchesDir, "patches-dir", "",
		"subdirectory with patches of each bug (default from config)")
	cobraCmd.Flags().StringVar(&c.annotationsDir, "annotations-dir", "",
		"subdirectory to write annotations to (default from config)")
	cobraCmd.Flags().StringVar(&c.outputPrefix, "output-prefix", "",
		"write annotations under this directory instead of the dataset tree")

	return cobraCmd
}

func (c *AnnotateCommand) newFromRepoCommand() *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "from-repo REPO_PATH OUTPUT_DIR",
		Short: "Annotate commits of a git repository, with commit metadata",
		Args:  cobra.ExactArgs(2),
		RunE:  c.RunFromRepo,
	}

	cobraCmd.Flags().StringVar(&c.startRev, "start-rev", "", "revision to walk from (default: HEAD)")
	cobraCmd.Flags().IntVar(&c.limit, "limit", 0, "max number of commits to annotate (0: unlimited)")
	cobraCmd.Flags().StringVar(&c.since, "since", "", "skip commits before this date (YYYY-MM-DD or RFC 3339)")
	cobraCmd.Flags().BoolVar(&c.firstParent, "first-parent", false, "follow only first parents")
	cobraCmd.Flags().BoolVar(&c.fanout, "fanout", false, "shard output by hash prefix (ab/cdef...)")

	return cobraCmd
}

// buildOptions merges configuration and command-line overrides into frozen
// annotation options. Callback compilation errors are fatal here, before any
// patch is processed.
func (c *AnnotateCommand) buildOptions() (annotate.Options, *config.Config, error) {
	cfg, err := config.LoadConfig(*c.configPath)
	if err != nil {
		return annotate.Options{}, nil, err
	}

	purposePairs := append(append([]string{}, cfg.Annotate.PurposeToAnnotation...), c.purposeToAnnotation...)
	extPairs := append(append([]string{}, cfg.Annotate.ExtToLanguage...), c.extToLanguage...)

	opts := annotate.Options{
		PurposeToAnnotation: config.ParsePairs(purposePairs),
		Languages:           languages.NewAnnotator(config.ParsePairs(extPairs)),
		MissingOK:           c.missingOK || cfg.Annotate.MissingOK,
	}

	source := c.lineCallback
	if source == "" {
		source = cfg.Annotate.LineCallback
	}

	if source != "" {
		cb, err := callback.CompileArg(source)
		if err != nil {
			return annotate.Options{}, nil, err
		}

		opts.LineCallback = cb
	}

	return opts, cfg, nil
}

func (c *AnnotateCommand) layout(cfg *config.Config) annotate.DatasetLayout {
	layout := annotate.DatasetLayout{
		PatchesDir:     cfg.Dataset.PatchesDir,
		AnnotationsDir: cfg.Dataset.AnnotationsDir,
		Compress:       c.compress || cfg.Annotate.Compress,
	}

	if c.patchesDir != "" {
		layout.PatchesDir = c.patchesDir
	}

	if c.annotationsDir != "" {
		layout.AnnotationsDir = c.annotationsDir
	}

	return layout
}

// RunPatch executes the annotate patch command.
func (c *AnnotateCommand) RunPatch(_ *cobra.Command, args []string) error {
	opts, _, err := c.buildOptions()
	if err != nil {
		return err
	}

	patch, err := annotate.New(opts).AnnotateFile(args[0])
	if err != nil {
		return err
	}

	return jsonstore.Write(args[1], patch)
}

// RunDataset executes the annotate dataset command.
func (c *AnnotateCommand) RunDataset(_ *cobra.Command, args []string) error {
	opts, cfg, err := c.buildOptions()
	if err != nil {
		return err
	}

	annotator := annotate.New(opts)
	layout := c.layout(cfg)

	for _, datasetDir := range args {
		if err := c.annotateDataset(annotator, layout, datasetDir); err != nil {
			return err
		}
	}

	return nil
}

func (c *AnnotateCommand) annotateDataset(annotator *annotate.Annotator, layout annotate.DatasetLayout, datasetDir string) error {
	bugs, err := annotate.ListBugs(datasetDir)
	if err != nil {
		return err
	}

	outputDir := c.outputPrefix
	if outputDir == "" {
		outputDir = datasetDir
	}

	slog.Info("annotating dataset", "dataset", datasetDir, "bugs", len(bugs), "output", outputDir)

	pw, tracker := startProgress("bugs", int64(len(bugs)))
	defer stopProgress(pw, tracker)

	for _, bugID := range bugs {
		bug, err := annotator.AnnotateBug(datasetDir, bugID, layout)
		if err != nil {
			return err
		}

		if err := bug.Save(outputDir, layout); err != nil {
			return err
		}

		tracker.Increment(1)
	}

	return nil
}

// RunFromRepo executes the annotate from-repo command. Each visited commit
// becomes one document with commit metadata, diff size metrics, and per-file
// annotations. Failures of a single commit are logged and skipped.
func (c *AnnotateCommand) RunFromRepo(_ *cobra.Command, args []string) error {
	opts, cfg, err := c.buildOptions()
	if err != nil {
		return err
	}

	repoPath, outputDir := args[0], args[1]

	repo, err := gitrepo.Open(repoPath)
	if err != nil {
		return err
	}
	defer repo.Free()

	annotator := annotate.New(opts)

	walkOpts, err := c.walkOptions(cfg)
	if err != nil {
		return err
	}

	compress := c.compress || cfg.Annotate.Compress
	fanout := c.fanout || cfg.Repo.Fanout

	pw, tracker := startProgress("commits", int64(walkOpts.Limit))
	defer stopProgress(pw, tracker)

	var annotated, skipped int

	err = repo.Walk(walkOpts, func(commit *gitrepo.Commit) error {
		doc, err := c.annotateCommit(annotator, commit)
		if err != nil {
			slog.Error("skipping commit", "commit", commit.Hash(), "error", err)
			skipped++

			return nil
		}

		path := documentPath(outputDir, commit.Hash(), compress, fanout)
		if err := jsonstore.Write(path, doc); err != nil {
			return err
		}

		annotated++
		tracker.Increment(1)

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("repository annotated",
		"commits", humanize.Comma(int64(annotated)), "skipped", skipped, "output", outputDir)

	return nil
}

func (c *AnnotateCommand) annotateCommit(annotator *annotate.Annotator, commit *gitrepo.Commit) (*annotate.Document, error) {
	diffText, err := commit.UnifiedDiff()
	if err != nil {
		return nil, err
	}

	files, _, err := gitdiff.Parse(strings.NewReader(diffText))
	if err != nil {
		return nil, fmt.Errorf("parsing diff of %s: %w", commit.Hash(), err)
	}

	return annotator.NewDocument(files, commit.Metadata()), nil
}

func (c *AnnotateCommand) walkOptions(cfg *config.Config) (gitrepo.WalkOptions, error) {
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

	since, err := parseSince(c.since)
	if err != nil {
		return gitrepo.WalkOptions{}, err
	}
	walkOpts.Since = since

	return walkOpts, nil
}

func documentPath(outputDir, hash string, compress, fanout bool) string {
	ext := ".json"
	if compress {
		ext += jsonstore.CompressedExt
	}

	if fanout {
		return jsonstore.Fanout(outputDir, hash, ext)
	}

	return filepath.Join(outputDir, hash+ext)
}
