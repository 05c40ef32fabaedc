// Package sources fetches raw reference text for a requested chapter.
// Fetchers are collaborators behind a narrow interface; a failed or
// empty fetch degrades to a synthetic fallback document so the
// pipeline never starves downstream of input.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/lectern/internal/types"
)

// Confidence weights per source kind. Placeholder weights to be tuned,
// not load-bearing business logic.
const (
	TextbookConfidence  = 0.9
	ReferenceConfidence = 0.8
	NotesConfidence     = 0.7
	FallbackConfidence  = 0.5
)

// Fetcher retrieves source documents for a request.
type Fetcher interface {
	// FetchSources returns zero or more documents for the request.
	FetchSources(ctx context.Context, req types.Request) ([]types.SourceDocument, error)

	// Name returns the fetcher identifier.
	Name() string
}

// MultiFetcher fans a request out to several fetchers and merges the
// results. One fetcher failing never fails the fetch as a whole.
type MultiFetcher struct {
	fetchers []Fetcher
	logger   *slog.Logger
}

// NewMultiFetcher creates a MultiFetcher over the given fetchers.
func NewMultiFetcher(logger *slog.Logger, fetchers ...Fetcher) *MultiFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiFetcher{
		fetchers: fetchers,
		logger:   logger.With("component", "sources"),
	}
}

// Name returns the fetcher identifier.
func (m *MultiFetcher) Name() string {
	return "multi"
}

// FetchSources collects documents from every fetcher, skipping empty
// documents and logging per-fetcher failures.
func (m *MultiFetcher) FetchSources(ctx context.Context, req types.Request) ([]types.SourceDocument, error) {
	var docs []types.SourceDocument
	for _, f := range m.fetchers {
		fetched, err := f.FetchSources(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return docs, ctx.Err()
			}
			m.logger.Warn("source fetch failed", "fetcher", f.Name(), "error", err)
			continue
		}
		for _, doc := range fetched {
			if strings.TrimSpace(doc.RawText) == "" {
				continue
			}
			docs = append(docs, doc)
		}
	}
	m.logger.Debug("sources fetched",
		"fetchers", len(m.fetchers), "documents", len(docs),
		"chapter", req.ChapterName)
	return docs, nil
}

// FallbackDocument synthesizes exactly one deterministic source
// document for a request. Used when the collective fetch yields zero
// usable documents.
func FallbackDocument(req types.Request) types.SourceDocument {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = "the subject"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s is a chapter studied in class %d %s under the %s board. ",
		req.ChapterName, req.ClassLevel, subject, req.Board)
	fmt.Fprintf(&b, "The chapter introduces the main ideas of %s and builds them up step by step. ",
		strings.ToLower(req.ChapterName))
	fmt.Fprintf(&b, "Students first meet the key definitions of the chapter. ")
	fmt.Fprintf(&b, "Each definition is followed by simple examples drawn from daily life and from the laboratory. ")
	fmt.Fprintf(&b, "The chapter then states the main rules and relations and shows how to apply them to standard problems. ")
	fmt.Fprintf(&b, "Worked examples demonstrate the method one step at a time. ")
	fmt.Fprintf(&b, "Practice questions at the end of the chapter test both recall of definitions and the ability to solve new problems. ")
	fmt.Fprintf(&b, "A short summary collects the definitions, rules, and formulas of %s in one place for revision.",
		strings.ToLower(req.ChapterName))

	return types.SourceDocument{
		URL:              "fallback://" + strings.ReplaceAll(strings.ToLower(req.ChapterName), " ", "-"),
		Kind:             types.SourceKindFallback,
		Title:            req.ChapterName + " (synthesized outline)",
		RawText:          b.String(),
		ConfidenceWeight: FallbackConfidence,
	}
}
