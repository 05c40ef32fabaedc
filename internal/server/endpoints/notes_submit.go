package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/jobs"
	"github.com/jackzampolin/lectern/internal/svcctx"
	"github.com/jackzampolin/lectern/internal/types"
)

// SubmitNotesResponse is the response for submitting a notes job.
type SubmitNotesResponse struct {
	JobID  string      `json:"job_id"`
	Status jobs.Status `json:"status"`
}

// NotesSubmitEndpoint handles POST /api/notes.
type NotesSubmitEndpoint struct{}

func (e *NotesSubmitEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/notes", e.handler
}

func (e *NotesSubmitEndpoint) RequiresInit() bool { return true }

func (e *NotesSubmitEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req types.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o := svcctx.OrchestratorFrom(r.Context())
	if o == nil {
		writeError(w, http.StatusServiceUnavailable, "orchestrator not initialized")
		return
	}

	jobID, err := o.Submit(r.Context(), req)
	if err != nil {
		var jerr *jobs.JobError
		if errors.As(err, &jerr) {
			writeError(w, http.StatusBadRequest, jerr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitNotesResponse{
		JobID:  jobID,
		Status: jobs.StatusInitializing,
	})
}

func (e *NotesSubmitEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		board   string
		class   int
		subject string
		chapter string
		depth   string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a chapter for notes generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" || chapter == "" {
				return fmt.Errorf("--subject and --chapter are required")
			}
			req := types.Request{
				Board:       board,
				ClassLevel:  class,
				Subject:     subject,
				ChapterName: chapter,
				DepthLevel:  types.ParseDepthLevel(depth),
			}
			client := api.NewClient(getServerURL())
			var resp SubmitNotesResponse
			if err := client.Post(cmd.Context(), "/api/notes", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&board, "board", "FBISE", "Education board")
	cmd.Flags().IntVar(&class, "class", 11, "Class level")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (required)")
	cmd.Flags().StringVar(&chapter, "chapter", "", "Chapter name (required)")
	cmd.Flags().StringVar(&depth, "depth", "comprehensive", "Depth level (quick, standard, comprehensive)")
	return cmd
}
