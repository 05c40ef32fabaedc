package generation

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/lectern/internal/textmatch"
	"github.com/jackzampolin/lectern/internal/types"
)

// Length bounds in words for each prose field of a topic.
const (
	definitionMinWords  = 10
	definitionMaxWords  = 150
	explanationMinWords = 250
	explanationMinLines = 15
	detailedMinWords    = 30
	detailedMaxWords    = 200
	shortMinWords       = 5
	shortMaxWords       = 30

	requiredQuestions = 3
	answerMinWords    = 10

	// Answers echoing their own question verbatim are rejected.
	answerEchoThreshold = 0.8

	// How closely the generated title must match the requested topic.
	alignmentThreshold = 0.7
)

// CheckResult is the outcome of one quality check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// QualityReport aggregates all quality checks run against one topic.
type QualityReport struct {
	Checks []CheckResult `json:"checks"`

	// LengthFailed is set when the length check specifically failed,
	// which selects the expansion-amended prompt on the next attempt.
	LengthFailed bool `json:"length_failed"`
}

// Passed reports whether every check succeeded.
func (r *QualityReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// PassRate returns the fraction of checks that passed.
func (r *QualityReport) PassRate() float64 {
	if len(r.Checks) == 0 {
		return 0
	}
	passed := 0
	for _, c := range r.Checks {
		if c.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(r.Checks))
}

// FailureSummary joins the detail of every failed check.
func (r *QualityReport) FailureSummary() string {
	var failures []string
	for _, c := range r.Checks {
		if !c.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", c.Name, c.Detail))
		}
	}
	return strings.Join(failures, "; ")
}

// EvaluateTopic runs every quality check against the generated content.
func EvaluateTopic(content *types.TopicContent, requestedTopic string) *QualityReport {
	report := &QualityReport{}

	presence := checkPresence(content)
	report.Checks = append(report.Checks, presence)

	length := checkLength(content)
	report.Checks = append(report.Checks, length)
	report.LengthFailed = !length.Passed

	report.Checks = append(report.Checks, checkAlignment(content, requestedTopic))
	report.Checks = append(report.Checks, checkAnswers(content))
	report.Checks = append(report.Checks, checkReadability(content))

	return report
}

func checkPresence(content *types.TopicContent) CheckResult {
	result := CheckResult{Name: "presence", Passed: true}

	var missing []string
	if strings.TrimSpace(content.TopicTitle) == "" {
		missing = append(missing, "topic_title")
	}
	if strings.TrimSpace(content.Definition) == "" {
		missing = append(missing, "definition")
	}
	if strings.TrimSpace(content.Explanation) == "" {
		missing = append(missing, "explanation")
	}
	if strings.TrimSpace(content.ExampleDetailed) == "" {
		missing = append(missing, "example_detailed")
	}
	if strings.TrimSpace(content.ExampleShort) == "" {
		missing = append(missing, "example_short")
	}
	if len(missing) > 0 {
		result.Passed = false
		result.Detail = "missing fields: " + strings.Join(missing, ", ")
		return result
	}

	if len(content.Questions) != requiredQuestions {
		result.Passed = false
		result.Detail = fmt.Sprintf("expected %d questions, got %d", requiredQuestions, len(content.Questions))
		return result
	}
	for i, q := range content.Questions {
		if strings.TrimSpace(q.Prompt) == "" || strings.TrimSpace(q.Answer) == "" {
			result.Passed = false
			result.Detail = fmt.Sprintf("question %d has an empty prompt or answer", i+1)
			return result
		}
	}
	return result
}

func checkLength(content *types.TopicContent) CheckResult {
	result := CheckResult{Name: "length", Passed: true}

	var problems []string
	if n := wordCount(content.Definition); n < definitionMinWords || n > definitionMaxWords {
		problems = append(problems, fmt.Sprintf("definition %d words (want %d-%d)", n, definitionMinWords, definitionMaxWords))
	}
	if n := wordCount(content.Explanation); n < explanationMinWords {
		problems = append(problems, fmt.Sprintf("explanation %d words (want >= %d)", n, explanationMinWords))
	}
	if n := lineCount(content.Explanation); n < explanationMinLines {
		problems = append(problems, fmt.Sprintf("explanation %d lines (want >= %d)", n, explanationMinLines))
	}
	if n := wordCount(content.ExampleDetailed); n < detailedMinWords || n > detailedMaxWords {
		problems = append(problems, fmt.Sprintf("detailed example %d words (want %d-%d)", n, detailedMinWords, detailedMaxWords))
	}
	if n := wordCount(content.ExampleShort); n < shortMinWords || n > shortMaxWords {
		problems = append(problems, fmt.Sprintf("short example %d words (want %d-%d)", n, shortMinWords, shortMaxWords))
	}

	if len(problems) > 0 {
		result.Passed = false
		result.Detail = strings.Join(problems, "; ")
	}
	return result
}

func checkAlignment(content *types.TopicContent, requestedTopic string) CheckResult {
	result := CheckResult{Name: "syllabus_alignment", Passed: true}

	score := textmatch.Combined(content.TopicTitle, requestedTopic)
	if score < alignmentThreshold {
		result.Passed = false
		result.Detail = fmt.Sprintf("title %q scores %.2f against requested topic %q (want >= %.2f)",
			content.TopicTitle, score, requestedTopic, alignmentThreshold)
	}
	return result
}

func checkAnswers(content *types.TopicContent) CheckResult {
	result := CheckResult{Name: "answer_quality", Passed: true}

	for i, q := range content.Questions {
		if n := wordCount(q.Answer); n < answerMinWords {
			result.Passed = false
			result.Detail = fmt.Sprintf("answer %d has %d words (want >= %d)", i+1, n, answerMinWords)
			return result
		}
		if sim := textmatch.Combined(q.Answer, q.Prompt); sim > answerEchoThreshold {
			result.Passed = false
			result.Detail = fmt.Sprintf("answer %d near-duplicates its question (similarity %.2f)", i+1, sim)
			return result
		}
	}
	return result
}

func checkReadability(content *types.TopicContent) CheckResult {
	result := CheckResult{Name: "readability", Passed: true}

	score := ReadabilityScore(content.Explanation)
	if score < readabilityPassScore {
		result.Passed = false
		result.Detail = fmt.Sprintf("explanation readability score %.1f (grade %.1f, want score >= %.1f)",
			score, GradeLevel(content.Explanation), readabilityPassScore)
	}
	return result
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func lineCount(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
