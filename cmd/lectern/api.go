package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Lectern server via HTTP.

These commands require a running server (lectern serve).
Use --server to specify a custom server URL.

Examples:
  lectern api health                                      # Check server health
  lectern api notes submit --subject Physics --chapter "Vectors and Equilibrium"
  lectern api notes poll <job-id>                         # Poll a job
  lectern api syllabus toc --subject Physics              # List chapters`,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Notes job commands",
}

var syllabusCmd = &cobra.Command{
	Use:   "syllabus",
	Short: "Syllabus lookup commands",
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Chapter cache commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8575", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Notes as subcommand group
	notesCmd.AddCommand((&endpoints.NotesSubmitEndpoint{}).Command(getServerURL))
	notesCmd.AddCommand((&endpoints.NotesStatusEndpoint{}).Command(getServerURL))
	notesCmd.AddCommand((&endpoints.NotesListEndpoint{}).Command(getServerURL))

	// Syllabus as subcommand group
	syllabusCmd.AddCommand((&endpoints.SyllabusResolveEndpoint{}).Command(getServerURL))
	syllabusCmd.AddCommand((&endpoints.SyllabusTOCEndpoint{}).Command(getServerURL))

	// Cache as subcommand group
	cacheCmd.AddCommand((&endpoints.CacheStatsEndpoint{}).Command(getServerURL))
	cacheCmd.AddCommand((&endpoints.CacheClearEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(notesCmd)
	apiCmd.AddCommand(syllabusCmd)
	apiCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(apiCmd)
}
