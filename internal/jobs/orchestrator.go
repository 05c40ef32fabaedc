package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/lectern/internal/cache"
	"github.com/jackzampolin/lectern/internal/generation"
	"github.com/jackzampolin/lectern/internal/retrieval"
	"github.com/jackzampolin/lectern/internal/sources"
	"github.com/jackzampolin/lectern/internal/syllabus"
	"github.com/jackzampolin/lectern/internal/types"
)

// ErrJobNotFound is returned by Status for unknown or reclaimed jobs.
var ErrJobNotFound = errors.New("job not found")

// DefaultRetention is how long terminal jobs stay pollable.
const DefaultRetention = time.Hour

// Progress milestones per stage. Progress within the generating stage
// interpolates between its bounds by topics completed.
const (
	progressValidated  = 5
	progressResolved   = 15
	progressFetched    = 30
	progressProcessed  = 40
	progressGenerating = 40
	progressCompiled   = 95
	progressDone       = 100
)

// Config wires the orchestrator's collaborators.
type Config struct {
	Matcher   *syllabus.Matcher
	Fetcher   sources.Fetcher
	Retriever *retrieval.Retriever
	Gate      *generation.Gate
	Cache     *cache.ChapterCache
	Validator *RequestValidator
	Retention time.Duration
	Logger    *slog.Logger
}

// Orchestrator drives submitted requests through the pipeline. Each
// job runs on its own goroutine, internally sequential; jobs share
// only the cache and the job registry.
type Orchestrator struct {
	matcher   *syllabus.Matcher
	fetcher   sources.Fetcher
	retriever *retrieval.Retriever
	gate      *generation.Gate
	cache     *cache.ChapterCache
	validator *RequestValidator
	retention time.Duration
	logger    *slog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job

	// now is swappable for retention tests.
	now func() time.Time
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Matcher == nil:
		return nil, fmt.Errorf("orchestrator requires a syllabus matcher")
	case cfg.Fetcher == nil:
		return nil, fmt.Errorf("orchestrator requires a source fetcher")
	case cfg.Retriever == nil:
		return nil, fmt.Errorf("orchestrator requires a retriever")
	case cfg.Gate == nil:
		return nil, fmt.Errorf("orchestrator requires a generation gate")
	case cfg.Cache == nil:
		return nil, fmt.Errorf("orchestrator requires a cache")
	}
	if cfg.Validator == nil {
		cfg.Validator = NewRequestValidator(ValidatorConfig{})
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		matcher:   cfg.Matcher,
		fetcher:   cfg.Fetcher,
		retriever: cfg.Retriever,
		gate:      cfg.Gate,
		cache:     cfg.Cache,
		validator: cfg.Validator,
		retention: cfg.Retention,
		logger:    logger.With("component", "orchestrator"),
		jobs:      make(map[string]*Job),
		now:       time.Now,
	}, nil
}

// Submit validates the request and enqueues a job, returning its id
// immediately. A cached chapter completes the job without generation.
func (o *Orchestrator) Submit(ctx context.Context, req types.Request) (string, error) {
	if verr := o.validator.Validate(req); verr != nil {
		return "", verr
	}

	job := &Job{
		ID:          uuid.New().String(),
		Request:     req,
		Status:      StatusInitializing,
		CurrentStep: "validating request",
		CreatedAt:   o.now().UTC(),
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.mu.Unlock()

	if cached := o.cache.Get(req); cached != nil {
		o.completeFromCache(job.ID, cached)
		o.logger.Info("job served from cache", "job_id", job.ID, "chapter", req.ChapterName)
		return job.ID, nil
	}

	// The job outlives the submitting request; only values (deadlines
	// excluded) carry over.
	go o.run(context.WithoutCancel(ctx), job.ID)
	return job.ID, nil
}

// Status returns a snapshot of the job, safe to poll at any rate.
func (o *Orchestrator) Status(jobID string) (*Job, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	job, ok := o.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.clone(), nil
}

// Jobs returns snapshots of all retained jobs, newest first.
func (o *Orchestrator) Jobs() []*Job {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j.clone())
	}
	return out
}

// Run reclaims terminal jobs past the retention window on a ticker
// until the context is cancelled. Call in a goroutine.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.retention)
	defer ticker.Stop()

	o.logger.Info("job retention sweep started", "retention", o.retention)
	for {
		select {
		case <-ctx.Done():
			o.logger.Info("job retention sweep stopping")
			return
		case <-ticker.C:
			if n := o.ReclaimExpired(); n > 0 {
				o.logger.Info("reclaimed expired jobs", "count", n)
			}
		}
	}
}

// ReclaimExpired drops terminal jobs whose retention has elapsed.
func (o *Orchestrator) ReclaimExpired() int {
	cutoff := o.now().Add(-o.retention)

	o.mu.Lock()
	defer o.mu.Unlock()
	removed := 0
	for id, j := range o.jobs {
		if j.Status.Terminal() && j.CompletedAt != nil && j.CompletedAt.Before(cutoff) {
			delete(o.jobs, id)
			removed++
		}
	}
	return removed
}

// run executes the pipeline for one job to a terminal state. All
// failures local to one topic or source degrade instead of failing
// the job; only resolution misses and unexpected errors fail it.
func (o *Orchestrator) run(ctx context.Context, jobID string) {
	start := o.now()
	req := o.mustJob(jobID).Request
	logger := o.logger.With("job_id", jobID, "chapter", req.ChapterName)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panic", "panic", r)
			o.fail(jobID, &JobError{
				Kind:    ErrKindPipeline,
				Message: fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	o.setStarted(jobID)
	o.setProgress(jobID, StatusInitializing, progressValidated, "request accepted")

	// Resolve the chapter against the syllabus.
	o.setProgress(jobID, StatusFetchingSyllabus, progressValidated, "resolving chapter against syllabus")
	res, err := o.matcher.Resolve(req.Board, req.ClassLevel, req.Subject, req.ChapterName)
	if err != nil {
		o.fail(jobID, &JobError{
			Kind:    ErrKindChapterNotFound,
			Message: fmt.Sprintf("no syllabus for %s class %d %s", req.Board, req.ClassLevel, req.Subject),
		})
		return
	}
	switch {
	case res.ExactMatch:
		// Proceed with the resolved chapter.
	case res.Found:
		o.fail(jobID, &JobError{
			Kind:        ErrKindAmbiguous,
			Message:     fmt.Sprintf("chapter %q did not match exactly; did you mean one of the suggestions?", req.ChapterName),
			Suggestions: res.Suggestions,
		})
		return
	default:
		o.fail(jobID, &JobError{
			Kind:    ErrKindChapterNotFound,
			Message: fmt.Sprintf("chapter %q not found in the %s class %d %s syllabus", req.ChapterName, req.Board, req.ClassLevel, req.Subject),
		})
		return
	}
	o.setProgress(jobID, StatusFetchingSyllabus, progressResolved, "chapter resolved")

	// Fetch sources; degrade to a synthetic document on empty fetch.
	o.setProgress(jobID, StatusScraping, progressResolved, "fetching source documents")
	docs, err := o.fetcher.FetchSources(ctx, req)
	if err != nil {
		logger.Warn("source fetch degraded", "error", err)
	}
	if len(docs) == 0 {
		logger.Warn("no usable sources, synthesizing fallback document")
		docs = []types.SourceDocument{sources.FallbackDocument(req)}
	}
	o.setCounter(jobID, "source_documents", len(docs))
	o.setProgress(jobID, StatusScraping, progressFetched, fmt.Sprintf("%d source documents ready", len(docs)))

	// Determine topics and build the retrieval corpus.
	o.setProgress(jobID, StatusProcessing, progressFetched, "selecting topics and chunking sources")
	topics := determineTopics(res.Chapter.Topics, docs, syllabus.DefaultTopics(req.Subject, req.ChapterName))
	corpus := o.retriever.BuildCorpus(docs)
	o.setCounter(jobID, "topics_selected", len(topics))
	o.setCounter(jobID, "chunks_indexed", len(corpus))
	o.setProgress(jobID, StatusProcessing, progressProcessed,
		fmt.Sprintf("%d topics selected, %d chunks indexed", len(topics), len(corpus)))

	// Generate each topic sequentially, substituting a deterministic
	// fallback when generation is exhausted.
	compiled := make([]types.TopicContent, 0, len(topics))
	fallbacks := 0
	for i, topic := range topics {
		o.setProgress(jobID, StatusGenerating,
			generationProgress(i, len(topics)),
			fmt.Sprintf("generating topic %d of %d: %s", i+1, len(topics), topic))

		chunks := o.retriever.Retrieve(topic, corpus, 0)
		content, genErr := o.gate.ProduceTopic(ctx, topic, req, chunks)
		if genErr != nil {
			if !errors.Is(genErr, generation.ErrGenerationExhausted) {
				o.fail(jobID, &JobError{
					Kind:    ErrKindPipeline,
					Message: genErr.Error(),
				})
				return
			}
			logger.Warn("generation exhausted, substituting fallback topic", "topic", topic)
			content = generation.FallbackTopic(topic, req)
			fallbacks++
		}
		compiled = append(compiled, *content)
		o.setCounter(jobID, "topics_generated", len(compiled))
		o.setCounter(jobID, "fallback_topics", fallbacks)
	}

	// Compile the chapter.
	o.setProgress(jobID, StatusGenerating, progressCompiled, "compiling chapter")
	chapter := compileChapter(req, compiled, fallbacks, len(docs), o.now().Sub(start))
	o.cache.Set(req, chapter)

	o.complete(jobID, chapter)
	logger.Info("job completed",
		"topics", len(chapter.Topics),
		"fallback_topics", chapter.FallbackTopics,
		"quality_score", chapter.QualityScore,
		"duration", chapter.GenerationTime)
}

// compileChapter aggregates topic content into the immutable artifact.
func compileChapter(req types.Request, topics []types.TopicContent, fallbacks, sourceCount int, elapsed time.Duration) *types.ComprehensiveChapter {
	wordCount := 0
	quality := 0.0
	for i := range topics {
		wordCount += topics[i].WordCount()
		quality += topics[i].QualityPassRate
	}
	if len(topics) > 0 {
		quality /= float64(len(topics))
	}

	return &types.ComprehensiveChapter{
		Board:          req.Board,
		ClassLevel:     req.ClassLevel,
		Subject:        req.Subject,
		ChapterTitle:   req.ChapterName,
		Depth:          types.ParseDepthLevel(string(req.DepthLevel)),
		Topics:         topics,
		WordCount:      wordCount,
		QualityScore:   quality,
		FallbackTopics: fallbacks,
		SourceCount:    sourceCount,
		GeneratedAt:    time.Now().UTC(),
		GenerationTime: elapsed,
	}
}

func generationProgress(done, total int) int {
	if total == 0 {
		return progressCompiled
	}
	span := progressCompiled - progressGenerating
	return progressGenerating + span*done/total
}

func (o *Orchestrator) mustJob(jobID string) *Job {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.jobs[jobID]
}

// setCounter records a diagnostic stage count. Terminal jobs keep
// their last observed values.
func (o *Orchestrator) setCounter(jobID, name string, value int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok || j.Status.Terminal() {
		return
	}
	if j.Counters == nil {
		j.Counters = make(map[string]int)
	}
	j.Counters[name] = value
}

func (o *Orchestrator) setStarted(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if j, ok := o.jobs[jobID]; ok && j.StartedAt == nil {
		t := o.now().UTC()
		j.StartedAt = &t
	}
}

// setProgress advances the job's stage and progress. Progress is
// monotonic and terminal states are never overwritten.
func (o *Orchestrator) setProgress(jobID string, status Status, progress int, step string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok || j.Status.Terminal() {
		return
	}
	j.Status = status
	if progress > j.Progress {
		j.Progress = progress
	}
	j.CurrentStep = step
}

func (o *Orchestrator) complete(jobID string, chapter *types.ComprehensiveChapter) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok || j.Status.Terminal() {
		return
	}
	t := o.now().UTC()
	j.Status = StatusCompleted
	j.Progress = progressDone
	j.CurrentStep = "completed"
	j.Result = chapter
	j.CompletedAt = &t
}

func (o *Orchestrator) completeFromCache(jobID string, chapter *types.ComprehensiveChapter) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return
	}
	t := o.now().UTC()
	j.Status = StatusCompleted
	j.Progress = progressDone
	j.CurrentStep = "served from cache"
	j.Result = chapter
	j.FromCache = true
	j.StartedAt = &t
	j.CompletedAt = &t
}

func (o *Orchestrator) fail(jobID string, jerr *JobError) {
	o.mu.Lock()
	defer o.mu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok || j.Status.Terminal() {
		return
	}
	t := o.now().UTC()
	j.Status = StatusFailed
	j.CurrentStep = "failed"
	j.Error = jerr
	j.CompletedAt = &t
}
