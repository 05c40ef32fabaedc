package generation

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/lectern/internal/types"
)

// maxPromptChunks bounds how much retrieved context is embedded in a
// single generation prompt.
const maxPromptChunks = 8

const systemPrompt = `You are an experienced teacher writing study notes for secondary-school students. Write clear, factual prose at roughly a grade 7 reading level: short sentences, common words, concrete examples. Respond with a single JSON object matching the requested schema and nothing else.`

// SystemPrompt returns the shared system message for topic generation.
func SystemPrompt() string {
	return systemPrompt
}

// BuildTopicPrompt assembles the generation prompt for one topic,
// embedding the request metadata and retrieved context chunks with
// their source attribution.
func BuildTopicPrompt(topicTitle string, req types.Request, chunks []types.TextChunk) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write comprehensive study notes for one topic of a school chapter.\n\n")
	fmt.Fprintf(&b, "Topic: %s\n", topicTitle)
	fmt.Fprintf(&b, "Chapter: %s\n", req.ChapterName)
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Board: %s\n", req.Board)
	fmt.Fprintf(&b, "Class level: %d\n", req.ClassLevel)
	fmt.Fprintf(&b, "Depth: %s\n\n", types.ParseDepthLevel(string(req.DepthLevel)))

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "- definition: %d-%d words\n", definitionMinWords, definitionMaxWords)
	fmt.Fprintf(&b, "- explanation: at least %d words across at least %d lines, written for roughly grade 7 readers\n",
		explanationMinWords, explanationMinLines)
	fmt.Fprintf(&b, "- example_detailed: %d-%d words, a worked example\n", detailedMinWords, detailedMaxWords)
	fmt.Fprintf(&b, "- example_short: %d-%d words\n", shortMinWords, shortMaxWords)
	fmt.Fprintf(&b, "- questions: exactly %d practice questions, each answer at least %d words and not a restatement of the question\n",
		requiredQuestions, answerMinWords)
	fmt.Fprintf(&b, "- topic_title: must stay close to %q\n\n", topicTitle)

	n := len(chunks)
	if n > maxPromptChunks {
		n = maxPromptChunks
	}
	if n > 0 {
		b.WriteString("Source material (use it for facts, do not copy verbatim):\n\n")
		for i, c := range chunks[:n] {
			fmt.Fprintf(&b, "[%d] (%s, %s)\n%s\n\n", i+1, c.SourceKind, c.SourceURL, c.Text)
		}
	}

	return b.String()
}

// AmendForExpansion appends an explicit expansion instruction to a
// prompt after a length-check failure.
func AmendForExpansion(prompt, topicTitle, failureDetail string) string {
	return prompt + fmt.Sprintf(
		"\nIMPORTANT: your previous notes on %q were too short or too long in places (%s). Expand the explanation well past %d words over %d or more lines, and keep every field inside its word bounds.\n",
		topicTitle, failureDetail, explanationMinWords, explanationMinLines)
}
