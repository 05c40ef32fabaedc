package jobs

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackzampolin/lectern/internal/types"
)

// maxTopicsPerChapter caps chapter size regardless of how many
// candidate topics the sources suggest.
const maxTopicsPerChapter = 8

// headingMaxWords bounds how long a line may be and still look like a
// section heading rather than prose.
const headingMaxWords = 8

// determineTopics picks the topic list for a chapter: declared
// syllabus topics when the catalog has them, otherwise heading-like
// lines extracted from the fetched text merged with the per-subject
// template, deduplicated and capped.
func determineTopics(declared []string, docs []types.SourceDocument, template []string) []string {
	if len(declared) > 0 {
		return capTopics(dedupeTopics(declared))
	}

	var candidates []string
	for _, doc := range docs {
		candidates = append(candidates, extractHeadings(doc.RawText)...)
	}
	candidates = append(candidates, template...)

	return capTopics(dedupeTopics(candidates))
}

// extractHeadings returns lines that look like section headings: short,
// unterminated, starting with an uppercase letter or a numbered label.
func extractHeadings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(line)
		if strings.ContainsRune(".!?,;:", last) {
			continue
		}
		words := strings.Fields(line)
		if len(words) == 0 || len(words) > headingMaxWords {
			continue
		}
		line = strings.TrimLeft(line, "0123456789. )")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := []rune(line)[0]
		if !unicode.IsUpper(first) {
			continue
		}
		headings = append(headings, titleCase(line))
	}
	return headings
}

// dedupeTopics removes case-insensitive duplicates, preserving order.
func dedupeTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	var out []string
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func capTopics(topics []string) []string {
	if len(topics) > maxTopicsPerChapter {
		return topics[:maxTopicsPerChapter]
	}
	return topics
}

// titleCase normalizes an all-caps heading to title form. Mixed-case
// headings pass through unchanged.
func titleCase(s string) string {
	if s != strings.ToUpper(s) {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
