package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/types"
)

var testRequest = types.Request{
	Board:       "FBISE",
	ClassLevel:  11,
	Subject:     "Physics",
	ChapterName: "Vectors and Equilibrium",
}

// topicJSON serializes a topic to the shape the model is asked to
// return (schema fields only).
func topicJSON(t *testing.T, topic *types.TopicContent) string {
	t.Helper()
	payload := map[string]any{
		"topic_title":      topic.TopicTitle,
		"definition":       topic.Definition,
		"explanation":      topic.Explanation,
		"example_detailed": topic.ExampleDetailed,
		"example_short":    topic.ExampleShort,
		"questions":        topic.Questions,
	}
	if topic.Comparison != "" {
		payload["comparison"] = topic.Comparison
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal topic: %v", err)
	}
	return string(b)
}

func newTestGate(t *testing.T, client providers.LLMClient) *Gate {
	t.Helper()
	gate, err := NewGate(Config{Client: client})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return gate
}

func TestGateAcceptsFirstAttempt(t *testing.T) {
	mock := providers.NewMockClient()
	response := topicJSON(t, goodTopic("Vector Addition"))
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		return response, json.RawMessage(response)
	}

	gate := newTestGate(t, mock)
	got, err := gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, nil)
	if err != nil {
		t.Fatalf("ProduceTopic: %v", err)
	}
	if got.AttemptsConsumed != 1 {
		t.Errorf("attempts = %d, want 1", got.AttemptsConsumed)
	}
	if got.QualityPassRate != 1.0 {
		t.Errorf("pass rate = %.2f, want 1.0", got.QualityPassRate)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("mock calls = %d, want 1", mock.RequestCount())
	}
}

func TestGateRegeneratesOnceOnShortExplanation(t *testing.T) {
	short := goodTopic("Vector Addition")
	short.Explanation = "Vectors have size and direction."
	shortJSON := topicJSON(t, short)
	goodJSON := topicJSON(t, goodTopic("Vector Addition"))

	mock := providers.NewMockClient()
	var prompts []string
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		prompts = append(prompts, req.Messages[len(req.Messages)-1].Content)
		if len(prompts) == 1 {
			return shortJSON, json.RawMessage(shortJSON)
		}
		return goodJSON, json.RawMessage(goodJSON)
	}

	gate := newTestGate(t, mock)
	got, err := gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, nil)
	if err != nil {
		t.Fatalf("ProduceTopic: %v", err)
	}

	if mock.RequestCount() != 2 {
		t.Fatalf("mock calls = %d, want exactly 2 (one regeneration)", mock.RequestCount())
	}
	if got.AttemptsConsumed != 2 {
		t.Errorf("attempts = %d, want 2", got.AttemptsConsumed)
	}
	if strings.Contains(prompts[0], "IMPORTANT:") {
		t.Error("first prompt should not carry an expansion instruction")
	}
	if !strings.Contains(prompts[1], "IMPORTANT:") || !strings.Contains(prompts[1], "Vector Addition") {
		t.Error("second prompt should carry a topic-referencing expansion instruction")
	}
}

func TestGateParseFailureConsumesAttempt(t *testing.T) {
	goodJSON := topicJSON(t, goodTopic("Vector Addition"))

	mock := providers.NewMockClient()
	calls := 0
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		calls++
		if calls == 1 {
			garbage := "sorry, I cannot produce JSON right now"
			return garbage, nil
		}
		return goodJSON, json.RawMessage(goodJSON)
	}

	gate := newTestGate(t, mock)
	got, err := gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, nil)
	if err != nil {
		t.Fatalf("ProduceTopic: %v", err)
	}
	if got.AttemptsConsumed != 2 {
		t.Errorf("attempts = %d, want 2 (parse failure counts as an attempt)", got.AttemptsConsumed)
	}
}

func TestGateExhaustion(t *testing.T) {
	short := goodTopic("Vector Addition")
	short.Explanation = "Vectors have size and direction."
	shortJSON := topicJSON(t, short)

	mock := providers.NewMockClient()
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		return shortJSON, json.RawMessage(shortJSON)
	}

	gate := newTestGate(t, mock)
	_, err := gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, nil)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Errorf("error should wrap ErrGenerationExhausted, got %v", err)
	}
	if mock.RequestCount() != int64(DefaultMaxAttempts) {
		t.Errorf("mock calls = %d, want %d", mock.RequestCount(), DefaultMaxAttempts)
	}
}

func TestGateWaitsOnLimiterPerAttempt(t *testing.T) {
	short := goodTopic("Vector Addition")
	short.Explanation = "Vectors have size and direction."
	shortJSON := topicJSON(t, short)

	mock := providers.NewMockClient()
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		return shortJSON, json.RawMessage(shortJSON)
	}

	limiter := providers.NewRateLimiter(100)
	gate, err := NewGate(Config{Client: mock, Limiter: limiter})
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}

	_, err = gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, nil)
	if !errors.Is(err, ErrGenerationExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}

	if consumed := limiter.Status().TotalConsumed; consumed != int64(DefaultMaxAttempts) {
		t.Errorf("limiter consumed %d tokens, want one per attempt (%d)", consumed, DefaultMaxAttempts)
	}
}

func TestGatePromptEmbedsContext(t *testing.T) {
	mock := providers.NewMockClient()
	var prompt string
	goodJSON := topicJSON(t, goodTopic("Vector Addition"))
	mock.ResponseFunc = func(req *providers.ChatRequest) (string, json.RawMessage) {
		prompt = req.Messages[len(req.Messages)-1].Content
		return goodJSON, json.RawMessage(goodJSON)
	}

	chunks := []types.TextChunk{
		{Text: "A vector has both magnitude and direction.", SourceURL: "test://textbook", SourceKind: types.SourceKindTextbook},
	}

	gate := newTestGate(t, mock)
	if _, err := gate.ProduceTopic(context.Background(), "Vector Addition", testRequest, chunks); err != nil {
		t.Fatalf("ProduceTopic: %v", err)
	}

	for _, want := range []string{"Topic: Vector Addition", "Vectors and Equilibrium", "test://textbook", "magnitude"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
