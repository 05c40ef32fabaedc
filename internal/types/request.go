// Package types provides shared types used across multiple packages.
// This package has no dependencies on other lectern packages to avoid import cycles.
package types

import (
	"strconv"
	"strings"
)

// DepthLevel controls how exhaustive the generated notes should be.
type DepthLevel string

const (
	DepthQuick         DepthLevel = "quick"
	DepthStandard      DepthLevel = "standard"
	DepthComprehensive DepthLevel = "comprehensive"
)

// ParseDepthLevel converts a string to a DepthLevel.
// Returns DepthComprehensive if the string is not recognized.
func ParseDepthLevel(s string) DepthLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quick":
		return DepthQuick
	case "standard":
		return DepthStandard
	case "comprehensive", "":
		return DepthComprehensive
	default:
		return DepthComprehensive
	}
}

// Request describes one chapter of study notes to assemble.
// It is immutable once a job starts; cache identity is derived from
// the normalized composite of its fields via CacheKey.
type Request struct {
	Board       string     `json:"board" mapstructure:"board"`
	ClassLevel  int        `json:"class_level" mapstructure:"class_level"`
	Subject     string     `json:"subject" mapstructure:"subject"`
	ChapterName string     `json:"chapter_name" mapstructure:"chapter_name"`
	DepthLevel  DepthLevel `json:"depth_level,omitempty" mapstructure:"depth_level"`
}

// CacheKey returns the normalized composite identity for this request.
// Two requests differing only in case or whitespace share a key.
func (r Request) CacheKey() string {
	parts := []string{
		normalizeKeyPart(r.Board),
		strconv.Itoa(r.ClassLevel),
		normalizeKeyPart(r.Subject),
		normalizeKeyPart(r.ChapterName),
		normalizeKeyPart(string(ParseDepthLevel(string(r.DepthLevel)))),
	}
	return strings.Join(parts, "|")
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Suggestion is a ranked alternative chapter name offered when a
// requested chapter cannot be resolved exactly.
type Suggestion struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}
