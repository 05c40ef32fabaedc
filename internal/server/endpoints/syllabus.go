package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/svcctx"
	"github.com/jackzampolin/lectern/internal/syllabus"
)

// parseTriple extracts the board/class/subject triple from query params.
func parseTriple(r *http.Request) (board string, class int, subject string, err error) {
	q := r.URL.Query()
	board = q.Get("board")
	subject = q.Get("subject")
	if board == "" || subject == "" {
		return "", 0, "", errors.New("board and subject are required")
	}
	class, err = strconv.Atoi(q.Get("class"))
	if err != nil {
		return "", 0, "", errors.New("class must be an integer")
	}
	return board, class, subject, nil
}

// SyllabusResolveEndpoint handles GET /api/syllabus/resolve.
type SyllabusResolveEndpoint struct{}

func (e *SyllabusResolveEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/syllabus/resolve", e.handler
}

func (e *SyllabusResolveEndpoint) RequiresInit() bool { return false }

func (e *SyllabusResolveEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	board, class, subject, err := parseTriple(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chapter := r.URL.Query().Get("chapter")
	if chapter == "" {
		writeError(w, http.StatusBadRequest, "chapter is required")
		return
	}

	m := svcctx.MatcherFrom(r.Context())
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "syllabus matcher not initialized")
		return
	}

	res, err := m.Resolve(board, class, subject, chapter)
	if err != nil {
		if errors.Is(err, syllabus.ErrSyllabusUnavailable) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (e *SyllabusResolveEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		board   string
		class   int
		subject string
		chapter string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a chapter name against the syllabus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" || chapter == "" {
				return fmt.Errorf("--subject and --chapter are required")
			}
			q := url.Values{}
			q.Set("board", board)
			q.Set("class", strconv.Itoa(class))
			q.Set("subject", subject)
			q.Set("chapter", chapter)

			client := api.NewClient(getServerURL())
			var res syllabus.Resolution
			if err := client.Get(cmd.Context(), "/api/syllabus/resolve?"+q.Encode(), &res); err != nil {
				return err
			}
			return api.Output(res)
		},
	}
	cmd.Flags().StringVar(&board, "board", "FBISE", "Education board")
	cmd.Flags().IntVar(&class, "class", 11, "Class level")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (required)")
	cmd.Flags().StringVar(&chapter, "chapter", "", "Chapter name (required)")
	return cmd
}

// TOCResponse is the response for the table-of-contents endpoint.
type TOCResponse struct {
	Chapters []string `json:"chapters"`
}

// SyllabusTOCEndpoint handles GET /api/syllabus/toc.
type SyllabusTOCEndpoint struct{}

func (e *SyllabusTOCEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/syllabus/toc", e.handler
}

func (e *SyllabusTOCEndpoint) RequiresInit() bool { return false }

func (e *SyllabusTOCEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	board, class, subject, err := parseTriple(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := svcctx.MatcherFrom(r.Context())
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "syllabus matcher not initialized")
		return
	}

	toc, err := m.TableOfContents(board, class, subject)
	if err != nil {
		if errors.Is(err, syllabus.ErrSyllabusUnavailable) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TOCResponse{Chapters: toc})
}

func (e *SyllabusTOCEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		board   string
		class   int
		subject string
	)
	cmd := &cobra.Command{
		Use:   "toc",
		Short: "List syllabus chapters for a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			q := url.Values{}
			q.Set("board", board)
			q.Set("class", strconv.Itoa(class))
			q.Set("subject", subject)

			client := api.NewClient(getServerURL())
			var resp TOCResponse
			if err := client.Get(cmd.Context(), "/api/syllabus/toc?"+q.Encode(), &resp); err != nil {
				return err
			}
			for i, title := range resp.Chapters {
				fmt.Printf("%2d. %s\n", i+1, title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&board, "board", "FBISE", "Education board")
	cmd.Flags().IntVar(&class, "class", 11, "Class level")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject (required)")
	return cmd
}
