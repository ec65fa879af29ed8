package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/mtarnawa/diffscope/internal/gather"
	"github.com/mtarnawa/diffscope/internal/jsonstore"
)

// RenderCommand holds the flags for the render command.
type RenderCommand struct {
	output string
	title  string
}

// NewRenderCommand creates and configures the render command.
func NewRenderCommand() *cobra.Command {
	c := &RenderCommand{}

	cobraCmd := &cobra.Command{
		Use:   "render TIMELINE_JSON",
		Short: "Render gathered timeline statistics as an HTML chart",
		Long: `Render gathered timeline statistics as an HTML chart.

The input is the JSON list written by 'gather timeline'; the output is a
stacked bar chart of added and removed lines per patch.`,
		Args: cobra.ExactArgs(1),
		RunE: c.Run,
	}

	cobraCmd.Flags().StringVarP(&c.output, "output", "o", "timeline.html", "HTML file to write the chart to")
	cobraCmd.Flags().StringVar(&c.title, "title", "Changed lines per patch", "chart title")

	return cobraCmd
}

// Run executes the render command.
func (c *RenderCommand) Run(_ *cobra.Command, args []string) error {
	var rows []gather.TimelineRecord

	if err := jsonstore.Read(args[0], &rows); err != nil {
		return err
	}

	if len(rows) == 0 {
		return fmt.Errorf("no timeline rows in %s", args[0])
	}

	sortRowsByTimestamp(rows)

	labels := make([]string, len(rows))
	added := make([]opts.BarData, len(rows))
	removed := make([]opts.BarData, len(rows))

	for i, row := range rows {
		labels[i] = rowLabel(row)
		added[i] = opts.BarData{Value: numberField(row, "+:count")}
		removed[i] = opts.BarData{Value: numberField(row, "-:count")}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: c.title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("added lines", added)
	bar.AddSeries("removed lines", removed)

	f, err := os.Create(c.output)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	return nil
}

// sortRowsByTimestamp orders rows by author timestamp when present, keeping
// the stored order otherwise.
func sortRowsByTimestamp(rows []gather.TimelineRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return numberField(rows[i], "author.timestamp") < numberField(rows[j], "author.timestamp")
	})
}

func rowLabel(row gather.TimelineRecord) string {
	bug, _ := row["bug_id"].(string)
	patch, _ := row["patch_id"].(string)

	if bug == "" {
		return patch
	}

	return bug + "/" + patch
}

func numberField(row gather.TimelineRecord, key string) float64 {
	n, _ := row[key].(float64)

	return n
}
