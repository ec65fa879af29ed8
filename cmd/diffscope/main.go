// Package main provides the entry point for the diffscope CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mtarnawa/diffscope/cmd/diffscope/commands"
	"github.com/mtarnawa/diffscope/pkg/version"
)

var (
	configPath string
	verbose    bool
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "diffscope",
		Short: "Diffscope - semantic annotation of unified diffs",
		Long: `Diffscope classifies the lines of unified-diff patches into semantic
categories (code vs. documentation, file purpose such as test or project
config) and aggregates the annotations into dataset-level statistics.

Commands:
  annotate  Annotate diff files, dataset trees, or repository history
  gather    Fold annotation documents into dataset statistics
  patches   Export one unified diff per commit of a repository
  render    Render gathered statistics as an HTML chart`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: .diffscope.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	// Add commands.
	rootCmd.AddCommand(commands.NewAnnotateCommand(&configPath))
	rootCmd.AddCommand(commands.NewGatherCommand(&configPath))
	rootCmd.AddCommand(commands.NewPatchesCommand(&configPath))
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "diffscope %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
