// Package textmatch provides pure text normalization and similarity
// scoring used for fuzzy chapter matching and chunk retrieval.
// All functions are deterministic and safe for concurrent use.
package textmatch

import (
	"strings"
	"unicode"
)

// Weights for the combined score. Word overlap dominates because topic
// titles share vocabulary more reliably than spelling.
const (
	wordOverlapWeight  = 0.7
	editDistanceWeight = 0.3
)

// Normalize lowercases text, strips punctuation, and collapses
// whitespace. Digits and letters are preserved.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// WordOverlap returns the Jaccard similarity of the unique-word sets
// of two texts, in [0,1]. Two empty texts score 1.0; one empty text
// scores 0.0.
func WordOverlap(a, b string) float64 {
	setA := wordSet(Normalize(a))
	setB := wordSet(Normalize(b))

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// EditDistance returns the Levenshtein distance between the normalized
// forms of a and b.
func EditDistance(a, b string) int {
	ra := []rune(Normalize(a))
	rb := []rune(Normalize(b))

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// EditDistanceSimilarity converts Levenshtein distance to a similarity
// in [0,1]: 1 - distance/max(len(a), len(b)) over normalized strings.
func EditDistanceSimilarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(EditDistance(na, nb))/float64(maxLen)
}

// Combined blends word overlap and edit-distance similarity. This is
// the score used for fuzzy topic matching.
func Combined(a, b string) float64 {
	return wordOverlapWeight*WordOverlap(a, b) + editDistanceWeight*EditDistanceSimilarity(a, b)
}

func wordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
