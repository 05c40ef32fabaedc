package retrieval

import (
	"log/slog"
	"sort"

	"github.com/jackzampolin/lectern/internal/textmatch"
	"github.com/jackzampolin/lectern/internal/types"
)

// Defaults for retrieval configuration.
const (
	DefaultTopK                = 6
	DefaultExpandedK           = 12
	DefaultConfidenceThreshold = 0.75
	DefaultMinChunkSize        = 200
	DefaultMaxChunkSize        = 800
	DefaultOverlapWords        = 20
)

// Config holds retrieval tuning knobs.
type Config struct {
	TopK                int
	ExpandedK           int
	ConfidenceThreshold float64
	MinChunkSize        int
	MaxChunkSize        int
	OverlapWords        int
	Logger              *slog.Logger
}

// Retriever chunks source documents and ranks chunks against queries.
// It never mutates an indexed corpus; repeated queries over the same
// corpus are safe.
type Retriever struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Retriever, applying defaults for unset knobs.
func New(cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ExpandedK <= 0 {
		cfg.ExpandedK = DefaultExpandedK
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.MinChunkSize <= 0 {
		cfg.MinChunkSize = DefaultMinChunkSize
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.OverlapWords <= 0 {
		cfg.OverlapWords = DefaultOverlapWords
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{cfg: cfg, logger: logger.With("component", "retrieval")}
}

// BuildCorpus chunks every source document into retrieval units.
func (r *Retriever) BuildCorpus(docs []types.SourceDocument) []types.TextChunk {
	var corpus []types.TextChunk
	for _, doc := range docs {
		for _, text := range ChunkText(doc.RawText, r.cfg.MinChunkSize, r.cfg.MaxChunkSize, r.cfg.OverlapWords) {
			corpus = append(corpus, types.TextChunk{
				Text:       text,
				SourceURL:  doc.URL,
				SourceKind: doc.Kind,
			})
		}
	}
	r.logger.Debug("corpus built", "documents", len(docs), "chunks", len(corpus))
	return corpus
}

// Retrieve scores every chunk against the query by word overlap and
// returns the topK best. When the mean score of the selected chunks
// falls below the confidence threshold, the result set is widened to
// ExpandedK chunks: low-confidence retrieval favors recall so a
// generation step is never starved of context.
func (r *Retriever) Retrieve(query string, corpus []types.TextChunk, topK int) []types.TextChunk {
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	if len(corpus) == 0 {
		return nil
	}

	scored := make([]types.TextChunk, len(corpus))
	copy(scored, corpus)
	for i := range scored {
		scored[i].Score = textmatch.WordOverlap(query, scored[i].Text)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	k := topK
	if k > len(scored) {
		k = len(scored)
	}

	var sum float64
	for _, c := range scored[:k] {
		sum += c.Score
	}
	mean := sum / float64(k)

	if mean < r.cfg.ConfidenceThreshold {
		expanded := r.cfg.ExpandedK
		if expanded > len(scored) {
			expanded = len(scored)
		}
		if expanded > k {
			r.logger.Debug("retrieval confidence low, widening result set",
				"query", query, "mean_score", mean, "expanded_k", expanded)
			k = expanded
		}
	}

	return scored[:k]
}
