// Package jobs drives the end-to-end note-assembly pipeline as
// asynchronous jobs with polled status. Submitting returns
// immediately; the job proceeds through fixed stages to a terminal
// state and is retained for a bounded window after completion.
package jobs

import (
	"time"

	"github.com/jackzampolin/lectern/internal/types"
)

// Status represents the current state of a job.
type Status string

const (
	StatusInitializing     Status = "initializing"
	StatusFetchingSyllabus Status = "fetching_syllabus"
	StatusScraping         Status = "scraping"
	StatusProcessing       Status = "processing"
	StatusGenerating       Status = "generating"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrorKind classifies job failures for callers.
type ErrorKind string

const (
	ErrKindValidation      ErrorKind = "validation_error"
	ErrKindChapterNotFound ErrorKind = "chapter_not_found"
	ErrKindAmbiguous       ErrorKind = "ambiguous_chapter"
	ErrKindPipeline        ErrorKind = "pipeline_failure"
)

// JobError is the structured error attached to a failed job.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	// Suggestions carries ranked alternative chapter titles when the
	// failure is a syllabus resolution miss.
	Suggestions []types.Suggestion `json:"suggestions,omitempty"`
}

func (e *JobError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Job is the polled record of one submitted request.
type Job struct {
	ID       string        `json:"id"`
	Request  types.Request `json:"request"`
	Status   Status        `json:"status"`
	Progress int           `json:"progress"` // 0-100, monotonic

	// CurrentStep describes what the job is doing right now.
	CurrentStep string `json:"current_step"`

	// Counters holds diagnostic per-stage counts (documents fetched,
	// chunks indexed, topics generated). Last observed values survive a
	// failure; they are diagnostic, not authoritative.
	Counters map[string]int `json:"counters,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Result is set only when Status is Completed.
	Result *types.ComprehensiveChapter `json:"result,omitempty"`

	// FromCache marks a result served without generation.
	FromCache bool `json:"from_cache,omitempty"`

	// Error is set only when Status is Failed.
	Error *JobError `json:"error,omitempty"`
}

// clone returns a copy safe to hand to callers while the job mutates.
func (j *Job) clone() *Job {
	cp := *j
	if j.Counters != nil {
		cp.Counters = make(map[string]int, len(j.Counters))
		for k, v := range j.Counters {
			cp.Counters[k] = v
		}
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.Error != nil {
		e := *j.Error
		e.Suggestions = append([]types.Suggestion(nil), j.Error.Suggestions...)
		cp.Error = &e
	}
	return &cp
}
