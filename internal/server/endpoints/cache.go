package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/cache"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// CacheStatsEndpoint handles GET /api/cache/stats.
type CacheStatsEndpoint struct{}

func (e *CacheStatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/cache/stats", e.handler
}

func (e *CacheStatsEndpoint) RequiresInit() bool { return false }

func (e *CacheStatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := svcctx.CacheFrom(r.Context())
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not initialized")
		return
	}
	writeJSON(w, http.StatusOK, c.Stats())
}

func (e *CacheStatsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show chapter cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var stats cache.Stats
			if err := client.Get(cmd.Context(), "/api/cache/stats", &stats); err != nil {
				return err
			}
			return api.Output(stats)
		},
	}
}

// CacheClearEndpoint handles DELETE /api/cache.
type CacheClearEndpoint struct{}

func (e *CacheClearEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/cache", e.handler
}

func (e *CacheClearEndpoint) RequiresInit() bool { return false }

func (e *CacheClearEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := svcctx.CacheFrom(r.Context())
	if c == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not initialized")
		return
	}
	c.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (e *CacheClearEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached chapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/cache"); err != nil {
				return err
			}
			fmt.Println("cache cleared")
			return nil
		},
	}
}
