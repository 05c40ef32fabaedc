// Package generation turns retrieved context into quality-gated topic
// content. The gate converts a best-effort generative call into a
// bounded artifact: every candidate passes structural parsing and a
// battery of quality checks, with amended-prompt regeneration on
// failure and a hard attempt ceiling.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/types"
)

// ErrGenerationExhausted is returned when every generation attempt for
// a topic failed quality checks. Callers decide whether to substitute
// a fallback or abort.
var ErrGenerationExhausted = errors.New("generation attempts exhausted")

// DefaultMaxAttempts bounds regeneration per topic.
const DefaultMaxAttempts = 3

// Config holds gate construction options.
type Config struct {
	Client      providers.LLMClient
	Limiter     *providers.RateLimiter
	MaxAttempts int
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *slog.Logger
}

// Gate produces quality-checked topic content from an LLM client.
type Gate struct {
	client      providers.LLMClient
	limiter     *providers.RateLimiter
	maxAttempts int
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewGate creates a Gate, applying defaults for unset knobs.
func NewGate(cfg Config) (*Gate, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("generation gate requires an LLM client")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		client:      cfg.Client,
		limiter:     cfg.Limiter,
		maxAttempts: cfg.MaxAttempts,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With("component", "generation"),
	}, nil
}

// MaxAttempts returns the configured attempt ceiling.
func (g *Gate) MaxAttempts() int {
	return g.maxAttempts
}

// ProduceTopic generates topic content, regenerating on quality
// failures until the content passes or attempts are exhausted. The
// returned content carries the pass rate of its final quality report.
func (g *Gate) ProduceTopic(ctx context.Context, topicTitle string, req types.Request, chunks []types.TextChunk) (*types.TopicContent, error) {
	basePrompt := BuildTopicPrompt(topicTitle, req, chunks)
	prompt := basePrompt

	var lastFailure string
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter wait: %w", err)
			}
		}

		result, err := g.client.Chat(ctx, &providers.ChatRequest{
			Messages: []providers.Message{
				{Role: "system", Content: SystemPrompt()},
				{Role: "user", Content: prompt},
			},
			Model:       g.model,
			Temperature: g.temperature,
			MaxTokens:   g.maxTokens,
			ResponseFormat: &providers.ResponseFormat{
				Type:       "json_schema",
				JSONSchema: TopicContentSchema(),
			},
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastFailure = fmt.Sprintf("generation call failed: %v", err)
			g.logger.Warn("generation attempt failed",
				"topic", topicTitle, "attempt", attempt, "error", err)
			prompt = basePrompt
			continue
		}

		content, err := ParseTopicContent(result.Content)
		if err != nil {
			// A parse failure consumes an attempt like any other failure.
			lastFailure = fmt.Sprintf("parse failed: %v", err)
			g.logger.Warn("generation output unparseable",
				"topic", topicTitle, "attempt", attempt, "error", err)
			prompt = basePrompt
			continue
		}

		report := EvaluateTopic(content, topicTitle)
		if report.Passed() {
			content.QualityPassRate = report.PassRate()
			content.GenerationModel = result.ModelUsed
			content.AttemptsConsumed = attempt
			g.logger.Info("topic accepted",
				"topic", topicTitle, "attempt", attempt, "words", content.WordCount())
			return content, nil
		}

		lastFailure = report.FailureSummary()
		g.logger.Warn("topic rejected by quality checks",
			"topic", topicTitle, "attempt", attempt,
			"pass_rate", report.PassRate(), "failures", lastFailure)

		// A length failure amends the next prompt with an expansion
		// instruction; other failures retry the same prompt.
		if report.LengthFailed {
			prompt = AmendForExpansion(basePrompt, topicTitle, lastFailure)
		} else {
			prompt = basePrompt
		}
	}

	return nil, fmt.Errorf("topic %q after %d attempts (%s): %w",
		topicTitle, g.maxAttempts, lastFailure, ErrGenerationExhausted)
}
