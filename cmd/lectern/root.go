package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Study-notes generation service with quality-gated LLM output",
	Long: `Lectern assembles comprehensive study notes for board-exam chapters.

A submitted chapter is resolved against the syllabus, source text is
fetched and chunked, and an LLM drafts per-topic notes that must pass
quality checks before they are compiled and cached.

The pipeline includes:
  - Fuzzy chapter resolution with ranked suggestions
  - Multi-feed source fetching with retries
  - Quality-gated generation with bounded regeneration
  - TTL + LRU caching of compiled chapters`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.lectern/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
