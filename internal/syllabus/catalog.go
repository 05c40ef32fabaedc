// Package syllabus resolves requested chapter names against the
// ordered table of contents declared for a board/class/subject triple.
package syllabus

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog is the full syllabus data set: board -> class -> subject ->
// ordered chapter list.
type Catalog struct {
	Boards []Board `yaml:"boards"`
}

// Board is one examination board.
type Board struct {
	Name    string  `yaml:"name"`
	Classes []Class `yaml:"classes"`
}

// Class is one class level within a board.
type Class struct {
	Level    int       `yaml:"level"`
	Subjects []Subject `yaml:"subjects"`
}

// Subject holds the ordered chapters for one subject.
type Subject struct {
	Name     string    `yaml:"name"`
	Chapters []Chapter `yaml:"chapters"`
}

// Chapter is one table-of-contents entry, optionally with its declared
// topic list.
type Chapter struct {
	Title  string   `yaml:"title"`
	Topics []string `yaml:"topics,omitempty"`
}

// LoadEmbeddedCatalog parses the catalog compiled into the binary.
func LoadEmbeddedCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse syllabus catalog: %w", err)
	}
	return &c, nil
}

// subject looks up the chapter list for a triple. The lookup is
// case-insensitive on board and subject names.
func (c *Catalog) subject(board string, classLevel int, subject string) *Subject {
	for i := range c.Boards {
		b := &c.Boards[i]
		if !strings.EqualFold(strings.TrimSpace(b.Name), strings.TrimSpace(board)) {
			continue
		}
		for j := range b.Classes {
			cl := &b.Classes[j]
			if cl.Level != classLevel {
				continue
			}
			for k := range cl.Subjects {
				s := &cl.Subjects[k]
				if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(subject)) {
					return s
				}
			}
		}
	}
	return nil
}

// DefaultTopics returns the built-in per-subject topic template used
// when a chapter declares no topics and heading extraction comes up
// short. Titles are parameterized by the chapter name.
func DefaultTopics(subject, chapter string) []string {
	chapter = strings.TrimSpace(chapter)
	base := []string{
		fmt.Sprintf("Introduction to %s", chapter),
		fmt.Sprintf("Key Definitions in %s", chapter),
		fmt.Sprintf("Core Principles of %s", chapter),
	}
	switch strings.ToLower(strings.TrimSpace(subject)) {
	case "physics":
		return append(base,
			fmt.Sprintf("Laws and Formulas in %s", chapter),
			fmt.Sprintf("Numerical Problems on %s", chapter),
			fmt.Sprintf("Applications of %s", chapter),
		)
	case "chemistry":
		return append(base,
			fmt.Sprintf("Reactions and Equations in %s", chapter),
			fmt.Sprintf("Applications of %s", chapter),
		)
	case "biology":
		return append(base,
			fmt.Sprintf("Structures and Processes in %s", chapter),
			fmt.Sprintf("Applications of %s", chapter),
		)
	case "mathematics", "math":
		return append(base,
			fmt.Sprintf("Theorems and Proofs in %s", chapter),
			fmt.Sprintf("Solved Examples for %s", chapter),
		)
	default:
		return append(base,
			fmt.Sprintf("Important Concepts in %s", chapter),
			fmt.Sprintf("Practice Material for %s", chapter),
		)
	}
}
