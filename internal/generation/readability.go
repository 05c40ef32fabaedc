package generation

import (
	"strings"
	"unicode"
)

// Readability targets. Generated notes aim at roughly a grade 6-9
// reading level centered on 7.5; the deviation score maps distance
// from that center onto a 0-10 scale.
const (
	targetGradeLevel     = 7.5
	gradeDeviationWeight = 2.0
	readabilityPassScore = 6.0
)

// GradeLevel estimates a Flesch-Kincaid grade level for the text from
// average sentence length and average syllables per word.
func GradeLevel(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	asl := float64(len(words)) / float64(sentences)
	asw := float64(syllables) / float64(len(words))
	return 0.39*asl + 11.8*asw - 15.59
}

// ReadabilityScore maps the grade level onto a 0-10 deviation score.
// The score is 10 at the target grade and falls off linearly.
func ReadabilityScore(text string) float64 {
	grade := GradeLevel(text)
	score := 10.0 - gradeDeviationWeight*abs(grade-targetGradeLevel)
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func countSentences(text string) int {
	n := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// A terminator inside a number (e.g. 3.14) is not a boundary.
		if r == '.' && i > 0 && i+1 < len(runes) &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		n++
		// Collapse runs of terminators into one boundary.
		for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			i++
		}
	}
	return n
}

// countSyllables approximates syllables by counting vowel groups,
// ignoring a trailing silent "e" (but keeping "le" endings).
func countSyllables(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if w == "" {
		return 1
	}

	if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && len(w) > 2 {
		w = w[:len(w)-1]
	}

	count := 0
	prevVowel := false
	for _, r := range w {
		isVowel := strings.ContainsRune("aeiouy", r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if count == 0 {
		count = 1
	}
	return count
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
