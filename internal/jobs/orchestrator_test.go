package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/lectern/internal/cache"
	"github.com/jackzampolin/lectern/internal/generation"
	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/retrieval"
	"github.com/jackzampolin/lectern/internal/sources"
	"github.com/jackzampolin/lectern/internal/syllabus"
	"github.com/jackzampolin/lectern/internal/types"
)

var vectorsRequest = types.Request{
	Board:       "FBISE",
	ClassLevel:  11,
	Subject:     "Physics",
	ChapterName: "Vectors and Equilibrium",
}

// passingExplanation builds prose inside the readability band with
// enough words and lines to clear the length checks.
func passingExplanation() string {
	a := "People in the valley garden water bright flowers each summer morning near the open window."
	b := "People in the valley tend bright flowers each warm day near the open window."
	var lines []string
	for i := 0; i < 9; i++ {
		lines = append(lines, a, b)
	}
	return strings.Join(lines, "\n")
}

// scriptedTopicResponse answers any topic prompt with content that
// passes every quality check, echoing the requested topic title.
func scriptedTopicResponse(t *testing.T) func(req *providers.ChatRequest) (string, json.RawMessage) {
	t.Helper()
	return func(req *providers.ChatRequest) (string, json.RawMessage) {
		prompt := req.Messages[len(req.Messages)-1].Content
		topic := "Unknown Topic"
		for _, line := range strings.Split(prompt, "\n") {
			if rest, ok := strings.CutPrefix(line, "Topic: "); ok {
				topic = rest
				break
			}
		}

		payload := map[string]any{
			"topic_title": topic,
			"definition": "This topic covers one central idea of the chapter and gives it a precise meaning " +
				"that students can state and apply in problems.",
			"explanation": passingExplanation(),
			"example_detailed": "A boat crosses a river while the current pushes it sideways. The boat engine gives one velocity " +
				"and the river gives another. Adding the two velocity arrows head to tail gives the real path of the boat, " +
				"which points diagonally across the water toward the far bank.",
			"example_short": "Wind pushing a kite sideways while you pull the string forward.",
			"questions": []map[string]string{
				{
					"prompt": "What is the main idea of this topic?",
					"answer": "The main idea links one physical quantity to another through a fixed rule that holds in every worked problem of the chapter.",
				},
				{
					"prompt": "How is this idea used when solving problems?",
					"answer": "You write down the given quantities, pick the rule that connects them, and apply it one careful step at a time to reach the answer.",
				},
				{
					"prompt": "Give one everyday situation where this idea applies.",
					"answer": "Pushing a loaded cart across a level floor shows the idea clearly, because the effort you feel changes exactly as the rule predicts.",
				},
			},
		}
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal scripted response: %v", err)
		}
		return string(b), json.RawMessage(b)
	}
}

func newTestOrchestrator(t *testing.T, mock *providers.MockClient) *Orchestrator {
	t.Helper()

	matcher, err := syllabus.NewMatcher(syllabus.MatcherConfig{})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	gate, err := generation.NewGate(generation.Config{Client: mock})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	o, err := NewOrchestrator(Config{
		Matcher:   matcher,
		Fetcher:   sources.NewMultiFetcher(nil, sources.NewStaticFeed()),
		Retriever: retrieval.New(retrieval.Config{}),
		Gate:      gate,
		Cache:     cache.New(cache.Config{}),
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func waitForTerminal(t *testing.T, o *Orchestrator, jobID string) *Job {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, err := o.Status(jobID)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if job.Status.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return nil
}

func TestEndToEndVectorsChapter(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseFunc = scriptedTopicResponse(t)
	o := newTestOrchestrator(t, mock)

	jobID, err := o.Submit(context.Background(), vectorsRequest)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	job := waitForTerminal(t, o, jobID)
	if job.Status != StatusCompleted {
		t.Fatalf("status = %q, error = %v", job.Status, job.Error)
	}
	if job.Progress != 100 {
		t.Errorf("progress = %d, want 100", job.Progress)
	}
	if job.FromCache {
		t.Error("first run must not be served from cache")
	}
	if job.Result == nil {
		t.Fatal("completed job must carry a chapter")
	}

	chapter := job.Result
	if n := len(chapter.Topics); n < 1 || n > 8 {
		t.Errorf("topics = %d, want 1-8", n)
	}
	for _, topic := range chapter.Topics {
		if len(topic.Questions) != 3 {
			t.Errorf("topic %q has %d questions, want 3", topic.TopicTitle, len(topic.Questions))
		}
		if topic.Fallback {
			t.Errorf("topic %q should not be a fallback", topic.TopicTitle)
		}
	}
	if chapter.FallbackTopics != 0 {
		t.Errorf("fallback topics = %d, want 0", chapter.FallbackTopics)
	}
	if chapter.QualityScore != 1.0 {
		t.Errorf("quality score = %.2f, want 1.0", chapter.QualityScore)
	}
	if chapter.WordCount == 0 {
		t.Error("chapter word count should be nonzero")
	}
	if job.Counters["topics_generated"] != len(chapter.Topics) {
		t.Errorf("counters = %v, want topics_generated = %d", job.Counters, len(chapter.Topics))
	}
	if job.Counters["source_documents"] == 0 {
		t.Errorf("counters = %v, want nonzero source_documents", job.Counters)
	}
}

func TestSecondSubmitServedFromCache(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseFunc = scriptedTopicResponse(t)
	o := newTestOrchestrator(t, mock)

	first, err := o.Submit(context.Background(), vectorsRequest)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForTerminal(t, o, first)
	callsAfterFirst := mock.RequestCount()

	second, err := o.Submit(context.Background(), vectorsRequest)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	job := waitForTerminal(t, o, second)

	if job.Status != StatusCompleted {
		t.Fatalf("status = %q", job.Status)
	}
	if !job.FromCache {
		t.Error("second submission should be served from cache")
	}
	if mock.RequestCount() != callsAfterFirst {
		t.Errorf("cache hit must not invoke generation: calls went %d -> %d",
			callsAfterFirst, mock.RequestCount())
	}

	// Normalized variants share the cache entry.
	variant := vectorsRequest
	variant.ChapterName = "  vectors AND equilibrium "
	third, err := o.Submit(context.Background(), variant)
	if err != nil {
		t.Fatalf("variant Submit: %v", err)
	}
	if job := waitForTerminal(t, o, third); !job.FromCache {
		t.Error("normalized variant should hit the cache")
	}
}

func TestChapterNotFoundFailsJob(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseFunc = scriptedTopicResponse(t)
	o := newTestOrchestrator(t, mock)

	req := vectorsRequest
	req.ChapterName = "zzzz qqqq xxxx"
	jobID, err := o.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	job := waitForTerminal(t, o, jobID)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.Error == nil || job.Error.Kind != ErrKindChapterNotFound {
		t.Errorf("error = %+v, want chapter_not_found", job.Error)
	}
	if mock.RequestCount() != 0 {
		t.Error("resolution failure must not invoke generation")
	}
}

func TestAmbiguousChapterAttachesSuggestions(t *testing.T) {
	mock := providers.NewMockClient()
	o := newTestOrchestrator(t, mock)

	req := vectorsRequest
	req.ChapterName = "vector"
	jobID, err := o.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	job := waitForTerminal(t, o, jobID)
	if job.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", job.Status)
	}
	if job.Error == nil || job.Error.Kind != ErrKindAmbiguous {
		t.Fatalf("error = %+v, want ambiguous_chapter", job.Error)
	}
	if len(job.Error.Suggestions) == 0 {
		t.Fatal("ambiguous failure must attach suggestions")
	}
	if job.Error.Suggestions[0].Title != "Vectors and Equilibrium" {
		t.Errorf("top suggestion = %q", job.Error.Suggestions[0].Title)
	}
}

func TestValidationRejectsBeforeJobCreation(t *testing.T) {
	o := newTestOrchestrator(t, providers.NewMockClient())

	_, err := o.Submit(context.Background(), types.Request{Board: "FBISE", ClassLevel: 2})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var jerr *JobError
	if !errors.As(err, &jerr) || jerr.Kind != ErrKindValidation {
		t.Errorf("error = %v, want a validation JobError", err)
	}
	if len(o.Jobs()) != 0 {
		t.Error("rejected request must not create a job")
	}
}

func TestGenerationExhaustionSubstitutesFallbacks(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = "not json at all"

	o := newTestOrchestrator(t, mock)
	jobID, err := o.Submit(context.Background(), vectorsRequest)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	job := waitForTerminal(t, o, jobID)
	if job.Status != StatusCompleted {
		t.Fatalf("degraded generation must still complete, got %q (%v)", job.Status, job.Error)
	}

	chapter := job.Result
	if chapter.FallbackTopics != len(chapter.Topics) {
		t.Errorf("fallback topics = %d, want all %d", chapter.FallbackTopics, len(chapter.Topics))
	}
	for _, topic := range chapter.Topics {
		if !topic.Fallback {
			t.Errorf("topic %q should be flagged fallback", topic.TopicTitle)
		}
		if len(topic.Questions) != 3 {
			t.Errorf("fallback topic %q has %d questions, want 3", topic.TopicTitle, len(topic.Questions))
		}
	}
	if chapter.QualityScore != 0 {
		t.Errorf("all-fallback quality score = %.2f, want 0", chapter.QualityScore)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	o := newTestOrchestrator(t, providers.NewMockClient())
	if _, err := o.Status("no-such-job"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("err = %v, want ErrJobNotFound", err)
	}
}

func TestReclaimExpiredJobs(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseFunc = scriptedTopicResponse(t)
	o := newTestOrchestrator(t, mock)

	jobID, err := o.Submit(context.Background(), vectorsRequest)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForTerminal(t, o, jobID)

	// Not yet past retention.
	if n := o.ReclaimExpired(); n != 0 {
		t.Errorf("reclaimed %d jobs before retention elapsed", n)
	}

	o.now = func() time.Time { return time.Now().Add(DefaultRetention + time.Minute) }
	if n := o.ReclaimExpired(); n != 1 {
		t.Errorf("reclaimed %d jobs, want 1", n)
	}
	if _, err := o.Status(jobID); !errors.Is(err, ErrJobNotFound) {
		t.Error("reclaimed job should no longer be pollable")
	}
}
