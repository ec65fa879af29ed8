package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtarnawa/diffscope/internal/config"
	"github.com/mtarnawa/diffscope/internal/gather"
	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

// GatherCommand holds the flags for the gather command group.
type GatherCommand struct {
	configPath *string

	annotationsDir string
	format         string
	output         string
	validate       bool

	purposeToAnnotation []string
}

// NewGatherCommand creates and configures the gather command group.
func NewGatherCommand(configPath *string) *cobra.Command {
	c := &GatherCommand{configPath: configPath}

	cobraCmd := &cobra.Command{
		Use:   "gather",
		Short: "Fold annotation documents into dataset statistics",
		Long: `Fold annotation documents into dataset statistics.

Each dataset is expected to be an existing directory with the layout
<dataset>/<bug>/annotation/<patch>.json; bugs are its subdirectories.`,
	}

	flags := cobraCmd.PersistentFlags()
	flags.StringVar(&c.annotationsDir, "annotations-dir", "",
		"subdirectory to read annotations from; use '' to read bug directories directly")
	flags.StringVar(&c.format, "format", "", "annotation document format: v1, v1.5, or v2")
	flags.BoolVar(&c.validate, "validate", false, "check documents against the annotation schema first")

	cobraCmd.AddCommand(c.newPurposeCounterCommand())
	cobraCmd.AddCommand(c.newPurposePerFileCommand())
	cobraCmd.AddCommand(c.newLinesStatsCommand())
	cobraCmd.AddCommand(c.newTimelineCommand())

	return cobraCmd
}

func (c *GatherCommand) newPurposeCounterCommand() *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "purpose-counter DATASET_DIR...",
		Short: "Count file and line purposes over whole datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.RunPurposeCounter,
	}

	cobraCmd.Flags().StringVarP(&c.output, "output", "o", "", "JSON file to write results to (default: stdout)")

	return cobraCmd
}

func (c *GatherCommand) newPurposePerFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purpose-per-file RESULT_JSON DATASET_DIR...",
		Short: "Collect the purposes of every changed file, per bug and patch",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.RunPurposePerFile,
	}
}

func (c *GatherCommand) newLinesStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lines-stats RESULT_JSON DATASET_DIR...",
		Short: "Count per-file line types and purposes, per bug and patch",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.RunLinesStats,
	}
}

func (c *GatherCommand) newTimelineCommand() *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "timeline RESULT_JSON DATASET_DIR...",
		Short: "Flatten every patch into one timeline row with commit metadata",
		Args:  cobra.MinimumNArgs(2),
		RunE:  c.RunTimeline,
	}

	cobraCmd.Flags().StringArrayVar(&c.purposeToAnnotation, "purpose-to-annotation", nil,
		"PURPOSE:LINE_TYPE pair remapping counted line types; '' resets the mapping")

	return cobraCmd
}

// resolve merges configuration with command-line overrides.
func (c *GatherCommand) resolve(cmd *cobra.Command) (gather.Format, string, error) {
	cfg, err := config.LoadConfig(*c.configPath)
	if err != nil {
		return "", "", err
	}

	name := cfg.Gather.Format
	if c.format != "" {
		name = c.format
	}

	format, err := gather.ParseFormat(name)
	if err != nil {
		return "", "", err
	}

	annotationsDir := cfg.Dataset.AnnotationsDir
	if cmd.Flags().Changed("annotations-dir") {
		annotationsDir = c.annotationsDir
	}

	return format, annotationsDir, nil
}

// dataset opens one dataset and optionally validates its documents first.
func (c *GatherCommand) dataset(dir, annotationsDir string, format gather.Format) (gather.Dataset, error) {
	dataset := gather.Dataset{Dir: dir, AnnotationsDir: annotationsDir}

	if !c.validate {
		return dataset, nil
	}

	violations, err := validateDataset(dataset, format)
	if err != nil {
		return dataset, err
	}

	if violations > 0 {
		return dataset, fmt.Errorf("%d documents in %s violate the annotation schema", violations, dir)
	}

	return dataset, nil
}

func validateDataset(dataset gather.Dataset, format gather.Format) (int, error) {
	bugs, err := dataset.Bugs()
	if err != nil {
		return 0, err
	}

	violations := 0

	for _, bugID := range bugs {
		names, err := dataset.Documents(bugID)
		if err != nil {
			return 0, err
		}

		for _, name := range names {
			doc, err := dataset.Load(bugID, name)
			if err != nil {
				slog.Error("cannot read annotation", "bug", bugID, "file", name, "error", err)
				violations++

				continue
			}

			if err := gather.ValidateDocument(name, doc, format); err != nil {
				slog.Error("schema violation", "bug", bugID, "error", err)
				violations++
			}
		}
	}

	return violations, nil
}

// gatherDatasets runs one fold per dataset directory with a progress tracker.
func (c *GatherCommand) gatherDatasets(cmd *cobra.Command, dirs []string,
	fold func(gather.Dataset, gather.Format, gather.BugProgress) (any, error),
) (map[string]any, error) {
	format, annotationsDir, err := c.resolve(cmd)
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(dirs))

	for _, dir := range dirs {
		dataset, err := c.dataset(dir, annotationsDir, format)
		if err != nil {
			return nil, err
		}

		bugs, err := dataset.Bugs()
		if err != nil {
			return nil, err
		}

		slog.Info("gathering dataset", "dataset", dir, "bugs", len(bugs))

		pw, tracker := startProgress("bugs", int64(len(bugs)))

		data, err := fold(dataset, format, func(string) { tracker.Increment(1) })

		stopProgress(pw, tracker)

		if err != nil {
			return nil, err
		}

		result[dir] = data
	}

	return result, nil
}

// RunPurposeCounter executes the gather purpose-counter command.
func (c *GatherCommand) RunPurposeCounter(cmd *cobra.Command, args []string) error {
	result, err := c.gatherDatasets(cmd, args,
		func(d gather.Dataset, f gather.Format, p gather.BugProgress) (any, error) {
			return d.GatherPurposeCounter(f, p)
		})
	if err != nil {
		return err
	}

	if c.output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	}

	return saveResult(result, c.output)
}

// RunPurposePerFile executes the gather purpose-per-file command.
func (c *GatherCommand) RunPurposePerFile(cmd *cobra.Command, args []string) error {
	result, err := c.gatherDatasets(cmd, args[1:],
		func(d gather.Dataset, f gather.Format, p gather.BugProgress) (any, error) {
			return d.GatherPurposePerFile(f, p)
		})
	if err != nil {
		return err
	}

	return saveResult(result, args[0])
}

// RunLinesStats executes the gather lines-stats command.
func (c *GatherCommand) RunLinesStats(cmd *cobra.Command, args []string) error {
	result, err := c.gatherDatasets(cmd, args[1:],
		func(d gather.Dataset, f gather.Format, p gather.BugProgress) (any, error) {
			return d.GatherLinesStats(f, p)
		})
	if err != nil {
		return err
	}

	return saveResult(result, args[0])
}

// RunTimeline executes the gather timeline command. Rows of all datasets are
// concatenated into one list.
func (c *GatherCommand) RunTimeline(cmd *cobra.Command, args []string) error {
	purposeToType := config.ParsePairs(c.purposeToAnnotation)

	perDataset, err := c.gatherDatasets(cmd, args[1:],
		func(d gather.Dataset, f gather.Format, p gather.BugProgress) (any, error) {
			return d.GatherTimeline(f, purposeToType, p)
		})
	if err != nil {
		return err
	}

	var rows []gather.TimelineRecord

	for _, dir := range args[1:] {
		if data, ok := perDataset[dir].([]gather.TimelineRecord); ok {
			rows = append(rows, data...)
		}
	}

	return saveResult(rows, args[0])
}

func saveResult(result any, path string) error {
	slog.Info("saving results", "path", path)

	return jsonstore.Write(path, result)
}
