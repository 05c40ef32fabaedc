package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Lectern server",
	Long: `Start the Lectern HTTP server.

The server resolves chapters against the syllabus, fetches source
text, and generates quality-gated study notes asynchronously.

The server provides:
  - POST /api/notes        - Submit a chapter for notes generation
  - GET  /api/notes/{id}   - Poll a job
  - GET  /api/syllabus/... - Resolve chapters and list tables of contents
  - GET  /health           - Basic server health check

Examples:
  lectern serve                    # Start on default port 8575
  lectern serve --port 3000        # Start on custom port
  lectern serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Load configuration with hot reload
		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		host := serveHost
		if host == "" {
			host = cfgMgr.Get().Server.Host
		}
		port := servePort
		if port == 0 {
			port = cfgMgr.Get().Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: from config)")

	rootCmd.AddCommand(serveCmd)
}
