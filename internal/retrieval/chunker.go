// Package retrieval splits source documents into overlapping chunks
// and ranks them against a topic query.
package retrieval

import "strings"

// SplitSentences breaks text into sentences on terminal punctuation.
// Terminators are kept attached to their sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Only treat as a boundary when followed by whitespace or EOT,
			// so decimals like 3.14 stay intact.
			if i == len(runes)-1 || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' || runes[i+1] == '\r' {
				flush()
			}
		}
	}
	flush()
	return sentences
}

// ChunkText splits text into chunks on sentence boundaries. Sentences
// accumulate until adding the next would exceed maxSize (provided the
// chunk already holds at least minSize), then the next chunk re-includes
// the last overlapWords words of the previous chunk so meaning is not
// lost at the boundary.
func ChunkText(text string, minSize, maxSize, overlapWords int) []string {
	if maxSize <= 0 {
		return nil
	}
	if minSize < 0 {
		minSize = 0
	}
	if overlapWords < 0 {
		overlapWords = 0
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var parts []string
	size := 0

	flush := func() string {
		chunk := strings.Join(parts, " ")
		chunks = append(chunks, chunk)
		return chunk
	}

	for _, s := range sentences {
		add := len(s)
		if size > 0 {
			add++ // joining space
		}
		if size > 0 && size+add > maxSize && size >= minSize {
			chunk := flush()
			parts = parts[:0]
			size = 0
			if tail := lastWords(chunk, overlapWords); tail != "" {
				parts = append(parts, tail)
				size = len(tail)
			}
			add = len(s)
			if size > 0 {
				add++
			}
		}
		parts = append(parts, s)
		size += add
	}
	if len(parts) > 0 {
		flush()
	}
	return chunks
}

// lastWords returns the trailing n words of s.
func lastWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}
