package types

// SourceKind categorizes where a source document came from.
type SourceKind string

const (
	SourceKindTextbook  SourceKind = "textbook"
	SourceKindReference SourceKind = "reference"
	SourceKindNotes     SourceKind = "notes"
	SourceKindFallback  SourceKind = "fallback"
)

// SourceDocument is raw source text fetched for a request.
// Documents are ephemeral; they live only for the duration of a job.
type SourceDocument struct {
	URL              string     `json:"url"`
	Kind             SourceKind `json:"kind"`
	Title            string     `json:"title"`
	RawText          string     `json:"raw_text"`
	ConfidenceWeight float64    `json:"confidence_weight"`
}

// TextChunk is a bounded, overlapping slice of a source document used
// as retrieval-granular context. Score is set per query.
type TextChunk struct {
	Text       string     `json:"text"`
	SourceURL  string     `json:"source_url"`
	SourceKind SourceKind `json:"source_kind"`
	Score      float64    `json:"score"`
}
