package generation

import (
	"strings"
	"testing"

	"github.com/jackzampolin/lectern/internal/types"
)

// goodExplanation builds prose that lands inside the grade 6-9
// readability band with enough words and lines to pass length checks.
func goodExplanation() string {
	a := "People in the valley garden water bright flowers each summer morning near the open window."
	b := "People in the valley tend bright flowers each warm day near the open window."
	var lines []string
	for i := 0; i < 9; i++ {
		lines = append(lines, a, b)
	}
	return strings.Join(lines, "\n")
}

func repeatWords(word string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ")
}

func goodTopic(title string) *types.TopicContent {
	return &types.TopicContent{
		TopicTitle:  title,
		Definition:  "A vector is a physical quantity that carries both a size and a direction, unlike a plain number which has size alone.",
		Explanation: goodExplanation(),
		ExampleDetailed: "A boat crosses a river while the current pushes it sideways. The boat engine gives one velocity and the river gives another. " +
			"Adding the two velocity arrows head to tail gives the real path of the boat, which points diagonally across the water toward the far bank.",
		ExampleShort: "Wind pushing a kite sideways while you pull the string forward.",
		Questions: []types.Question{
			{
				Prompt: "What makes a vector different from a scalar?",
				Answer: "A vector carries direction as well as size, so two vectors with equal size can still differ when they point different ways.",
			},
			{
				Prompt: "How do you add two vectors graphically?",
				Answer: "Place the tail of the second arrow at the head of the first arrow, then draw the sum from the free tail to the free head.",
			},
			{
				Prompt: "Give one everyday example of a vector quantity.",
				Answer: "The velocity of a moving car works, because describing it fully needs both its speed and the direction of travel.",
			},
		},
	}
}

func TestGradeLevelTargetBand(t *testing.T) {
	grade := GradeLevel(goodExplanation())
	if grade < 5.5 || grade > 9.5 {
		t.Errorf("grade level %.2f outside 5.5-9.5 band", grade)
	}
	if score := ReadabilityScore(goodExplanation()); score < readabilityPassScore {
		t.Errorf("readability score %.2f below pass threshold", score)
	}
}

func TestGradeLevelExtremes(t *testing.T) {
	dense := strings.Repeat("Thermodynamically irreversible transformations characteristically demonstrate entropically unfavorable configurations throughout heterogeneous macroscopic systems ", 5) + "."
	if score := ReadabilityScore(dense); score >= readabilityPassScore {
		t.Errorf("dense academic prose should fail readability, got score %.2f", score)
	}

	if GradeLevel("") != 0 {
		t.Error("empty text should have grade 0")
	}
}

func TestEvaluateTopicAllPass(t *testing.T) {
	report := EvaluateTopic(goodTopic("Vector Addition"), "Vector Addition")
	if !report.Passed() {
		t.Fatalf("expected all checks to pass, failures: %s", report.FailureSummary())
	}
	if report.PassRate() != 1.0 {
		t.Errorf("pass rate = %.2f, want 1.0", report.PassRate())
	}
}

func TestEvaluateTopicPresence(t *testing.T) {
	topic := goodTopic("Vector Addition")
	topic.Definition = ""
	report := EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Error("missing definition should fail presence")
	}

	topic = goodTopic("Vector Addition")
	topic.Questions = topic.Questions[:2]
	report = EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Error("two questions should fail presence")
	}
}

func TestEvaluateTopicLength(t *testing.T) {
	topic := goodTopic("Vector Addition")
	topic.Explanation = "Vectors have size and direction."
	report := EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Fatal("five-word explanation should fail")
	}
	if !report.LengthFailed {
		t.Error("short explanation should set LengthFailed")
	}

	topic = goodTopic("Vector Addition")
	topic.Definition = repeatWords("word", definitionMaxWords+1)
	report = EvaluateTopic(topic, "Vector Addition")
	if !report.LengthFailed {
		t.Error("oversized definition should fail the length check")
	}
}

func TestEvaluateTopicAlignment(t *testing.T) {
	topic := goodTopic("Photosynthesis in Plants")
	report := EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Error("unrelated title should fail alignment")
	}
	if report.LengthFailed {
		t.Error("alignment failure must not set LengthFailed")
	}
}

func TestEvaluateTopicAnswers(t *testing.T) {
	topic := goodTopic("Vector Addition")
	topic.Questions[0].Answer = "Direction matters."
	report := EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Error("two-word answer should fail the answer check")
	}

	topic = goodTopic("Vector Addition")
	topic.Questions[1].Prompt = "How do you add two vectors graphically using the head to tail rule in practice?"
	topic.Questions[1].Answer = "You add two vectors graphically using the head to tail rule in practice."
	report = EvaluateTopic(topic, "Vector Addition")
	if report.Passed() {
		t.Error("answer echoing its question should fail the answer check")
	}
}

func TestParseTopicContentRecovery(t *testing.T) {
	payload := `{"topic_title":"Vectors","definition":"` + repeatWords("word", 12) + `","explanation":"text","example_detailed":"d","example_short":"s","questions":[{"prompt":"p1","answer":"a1"},{"prompt":"p2","answer":"a2"},{"prompt":"p3","answer":"a3"}]}`

	tests := []struct {
		name string
		in   string
	}{
		{"bare json", payload},
		{"code fenced", "```json\n" + payload + "\n```"},
		{"surrounded by prose", "Here are the notes:\n" + payload + "\nHope this helps!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, err := ParseTopicContent(tt.in)
			if err != nil {
				t.Fatalf("ParseTopicContent: %v", err)
			}
			if topic.TopicTitle != "Vectors" {
				t.Errorf("title = %q", topic.TopicTitle)
			}
			if len(topic.Questions) != 3 {
				t.Errorf("questions = %d, want 3", len(topic.Questions))
			}
		})
	}
}

func TestParseTopicContentRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not json", "these are not the notes you are looking for"},
		{"missing required field", `{"topic_title":"Vectors"}`},
		{"wrong question count", `{"topic_title":"V","definition":"d","explanation":"e","example_detailed":"x","example_short":"s","questions":[{"prompt":"p","answer":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTopicContent(tt.in); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestFallbackTopicShape(t *testing.T) {
	req := types.Request{Board: "FBISE", ClassLevel: 11, Subject: "Physics", ChapterName: "Vectors and Equilibrium"}
	topic := FallbackTopic("Vector Addition", req)

	if !topic.Fallback {
		t.Error("fallback topic must be flagged")
	}
	if topic.TopicTitle != "Vector Addition" {
		t.Errorf("title = %q", topic.TopicTitle)
	}
	if len(topic.Questions) != 3 {
		t.Errorf("fallback must carry 3 questions, got %d", len(topic.Questions))
	}
	if !strings.Contains(topic.Explanation, "Vectors and Equilibrium") {
		t.Error("fallback explanation should reference the chapter")
	}

	// Deterministic for identical inputs.
	again := FallbackTopic("Vector Addition", req)
	if topic.Explanation != again.Explanation || topic.Definition != again.Definition {
		t.Error("fallback content must be deterministic")
	}
}
