package generation

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/lectern/internal/types"
)

// FallbackTopic builds deterministic, clearly-labeled study notes for a
// topic when generation is exhausted. The content is parameterized by
// topic and subject so a degraded topic still reads coherently inside
// the compiled chapter.
func FallbackTopic(topicTitle string, req types.Request) *types.TopicContent {
	subject := strings.ToLower(strings.TrimSpace(req.Subject))
	if subject == "" {
		subject = "this subject"
	}

	return &types.TopicContent{
		TopicTitle: topicTitle,
		Definition: fmt.Sprintf(
			"%s is a core topic of the chapter %q in %s. This entry is a placeholder outline generated without source material; verify details against your textbook.",
			topicTitle, req.ChapterName, subject),
		Explanation: fallbackExplanation(topicTitle, req),
		ExampleDetailed: fmt.Sprintf(
			"Worked example placeholder for %s. Take one standard problem from the %q chapter of your %s textbook, write down the given quantities, state which rule or relation from this topic applies, apply it step by step, and check that the units of the result make sense.",
			topicTitle, req.ChapterName, subject),
		ExampleShort: fmt.Sprintf(
			"A quick everyday illustration of %s appears in most %s textbooks.",
			topicTitle, subject),
		Questions: []types.Question{
			{
				Prompt: fmt.Sprintf("Define %s in your own words.", topicTitle),
				Answer: fmt.Sprintf(
					"Write a short definition of %s using the terms introduced in the chapter %q, then compare it with the definition given in your textbook and note any difference.",
					topicTitle, req.ChapterName),
			},
			{
				Prompt: fmt.Sprintf("Why is %s important in %s?", topicTitle, subject),
				Answer: fmt.Sprintf(
					"Explain where %s is used later in the course and give one real situation from daily life or laboratory work where it applies directly.",
					topicTitle),
			},
			{
				Prompt: fmt.Sprintf("Give one worked example involving %s.", topicTitle),
				Answer: fmt.Sprintf(
					"Pick an exercise on %s from the end of the chapter, solve it showing every step, and state clearly which principle each step relies on.",
					topicTitle),
			},
		},
		Fallback:        true,
		QualityPassRate: 0,
	}
}

func fallbackExplanation(topicTitle string, req types.Request) string {
	lines := []string{
		fmt.Sprintf("NOTE: automatic generation for %q did not complete, so this section is a study outline rather than full notes.", topicTitle),
		fmt.Sprintf("The topic belongs to the chapter %q for class %d.", req.ChapterName, req.ClassLevel),
		"Use the outline below together with your textbook.",
		fmt.Sprintf("1. Read the textbook section on %s once without taking notes.", topicTitle),
		"2. On the second pass, write down every definition in your own words.",
		"3. List the key terms and symbols the section introduces.",
		"4. Note any formula or rule and the conditions under which it holds.",
		"5. Work through the in-text example before looking at its solution.",
		"6. Draw a diagram if the topic has any geometric or visual content.",
		"7. Connect the topic to the previous section of the chapter in one sentence.",
		"8. Connect it to the next section in one sentence.",
		"9. Attempt the easiest end-of-chapter exercise on this topic.",
		"10. Attempt one harder exercise and mark the step where you get stuck.",
		"11. Review the marked step against the worked example.",
		"12. Summarize the whole topic in five lines from memory.",
		"13. Check your summary against the textbook and correct it.",
		fmt.Sprintf("14. Ask your teacher about any part of %s that is still unclear.", topicTitle),
	}
	return strings.Join(lines, "\n")
}
