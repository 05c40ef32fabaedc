package types

import (
	"strings"
	"time"
)

// Question is a practice question with its model answer.
type Question struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// TopicContent is one generated topic unit of a chapter.
// It is produced by the generation gate after passing quality checks,
// or by the deterministic fallback generator when generation is exhausted.
type TopicContent struct {
	TopicTitle       string     `json:"topic_title"`
	Definition       string     `json:"definition"`
	Explanation      string     `json:"explanation"`
	Comparison       string     `json:"comparison,omitempty"`
	ExampleDetailed  string     `json:"example_detailed"`
	ExampleShort     string     `json:"example_short"`
	Questions        []Question `json:"questions"`
	Fallback         bool       `json:"fallback,omitempty"`
	QualityPassRate  float64    `json:"quality_pass_rate"`
	GenerationModel  string     `json:"generation_model,omitempty"`
	AttemptsConsumed int        `json:"attempts_consumed,omitempty"`
}

// WordCount counts words across all prose fields of the topic.
func (t *TopicContent) WordCount() int {
	n := len(strings.Fields(t.Definition)) +
		len(strings.Fields(t.Explanation)) +
		len(strings.Fields(t.Comparison)) +
		len(strings.Fields(t.ExampleDetailed)) +
		len(strings.Fields(t.ExampleShort))
	for _, q := range t.Questions {
		n += len(strings.Fields(q.Prompt)) + len(strings.Fields(q.Answer))
	}
	return n
}

// ComprehensiveChapter is the compiled aggregate of all TopicContent
// for a request. Immutable once produced; this is the artifact that is
// cached and returned to callers.
type ComprehensiveChapter struct {
	Board          string         `json:"board"`
	ClassLevel     int            `json:"class_level"`
	Subject        string         `json:"subject"`
	ChapterTitle   string         `json:"chapter_title"`
	Depth          DepthLevel     `json:"depth"`
	Topics         []TopicContent `json:"topics"`
	WordCount      int            `json:"word_count"`
	QualityScore   float64        `json:"quality_score"`
	FallbackTopics int            `json:"fallback_topics"`
	SourceCount    int            `json:"source_count"`
	GeneratedAt    time.Time      `json:"generated_at"`
	GenerationTime time.Duration  `json:"generation_time"`
}
