// Package endpoints defines the HTTP API surface of the lectern server.
// Each endpoint pairs an HTTP route with a CLI command that calls it.
package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/jackzampolin/lectern/internal/api"
)

// Config carries dependencies shared by endpoint constructors.
type Config struct{}

// All returns every endpoint the server exposes.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&StatusEndpoint{},
		&NotesSubmitEndpoint{},
		&NotesStatusEndpoint{},
		&NotesListEndpoint{},
		&SyllabusResolveEndpoint{},
		&SyllabusTOCEndpoint{},
		&CacheStatsEndpoint{},
		&CacheClearEndpoint{},
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
