package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/lectern/internal/types"
)

// maxFeedBodyBytes caps how much text one feed response contributes.
const maxFeedBodyBytes = 1 << 20

// HTTPFeedConfig configures one remote text feed.
type HTTPFeedConfig struct {
	Name string
	// BaseURL receives the request as query parameters:
	// ?board=...&class=...&subject=...&chapter=...
	BaseURL    string
	Kind       types.SourceKind
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// HTTPFeed fetches chapter text from a remote endpoint with retries.
type HTTPFeed struct {
	name       string
	baseURL    string
	kind       types.SourceKind
	attempts   uint
	retryDelay time.Duration
	client     *http.Client
}

// NewHTTPFeed creates an HTTP feed fetcher.
func NewHTTPFeed(cfg HTTPFeedConfig) *HTTPFeed {
	if cfg.Name == "" {
		cfg.Name = "httpfeed"
	}
	if cfg.Kind == "" {
		cfg.Kind = types.SourceKindReference
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPFeed{
		name:       cfg.Name,
		baseURL:    cfg.BaseURL,
		kind:       cfg.Kind,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		client:     client,
	}
}

// Name returns the fetcher identifier.
func (f *HTTPFeed) Name() string {
	return f.name
}

// FetchSources fetches chapter text for the request, retrying on
// transient failures.
func (f *HTTPFeed) FetchSources(ctx context.Context, req types.Request) ([]types.SourceDocument, error) {
	feedURL, err := f.buildURL(req)
	if err != nil {
		return nil, err
	}

	var body string
	err = retry.Do(
		func() error {
			var fetchErr error
			body, fetchErr = f.fetchOnce(ctx, feedURL)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", f.name, err)
	}

	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	return []types.SourceDocument{{
		URL:              feedURL,
		Kind:             f.kind,
		Title:            fmt.Sprintf("%s: %s", f.name, req.ChapterName),
		RawText:          body,
		ConfidenceWeight: confidenceFor(f.kind),
	}}, nil
}

func (f *HTTPFeed) buildURL(req types.Request) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("feed %s: invalid base URL: %w", f.name, err)
	}
	q := u.Query()
	q.Set("board", req.Board)
	q.Set("class", fmt.Sprintf("%d", req.ClassLevel))
	q.Set("subject", req.Subject)
	q.Set("chapter", req.ChapterName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (f *HTTPFeed) fetchOnce(ctx context.Context, feedURL string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func confidenceFor(kind types.SourceKind) float64 {
	switch kind {
	case types.SourceKindTextbook:
		return TextbookConfidence
	case types.SourceKindReference:
		return ReferenceConfidence
	case types.SourceKindNotes:
		return NotesConfidence
	default:
		return FallbackConfidence
	}
}
