package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/jobs"
	"github.com/jackzampolin/lectern/internal/svcctx"
)

// NotesStatusEndpoint handles GET /api/notes/{id}.
type NotesStatusEndpoint struct{}

func (e *NotesStatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/notes/{id}", e.handler
}

func (e *NotesStatusEndpoint) RequiresInit() bool { return false }

func (e *NotesStatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job id is required")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	job, err := o.Status(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (e *NotesStatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <job-id>",
		Short: "Poll a notes job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var job jobs.Job
			if err := client.Get(cmd.Context(), "/api/notes/"+args[0], &job); err != nil {
				return err
			}
			return api.Output(job)
		},
	}
}

// NotesListResponse is the response for listing jobs.
type NotesListResponse struct {
	Jobs []*jobs.Job `json:"jobs"`
}

// NotesListEndpoint handles GET /api/notes.
type NotesListEndpoint struct{}

func (e *NotesListEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/notes", e.handler
}

func (e *NotesListEndpoint) RequiresInit() bool { return false }

func (e *NotesListEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}
	writeJSON(w, http.StatusOK, NotesListResponse{Jobs: o.Jobs()})
}

func (e *NotesListEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notes jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp NotesListResponse
			if err := client.Get(cmd.Context(), "/api/notes", &resp); err != nil {
				return err
			}
			for _, job := range resp.Jobs {
				fmt.Printf("%s  %-18s %3d%%  %s / class %d / %s\n",
					job.ID, job.Status, job.Progress,
					job.Request.Subject, job.Request.ClassLevel, job.Request.ChapterName)
			}
			return nil
		},
	}
}
