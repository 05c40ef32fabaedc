package syllabus

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackzampolin/lectern/internal/textmatch"
	"github.com/jackzampolin/lectern/internal/types"
)

// ErrSyllabusUnavailable indicates no table of contents exists for the
// requested board/class/subject triple. This is distinct from an empty
// fuzzy-match result.
var ErrSyllabusUnavailable = errors.New("no syllabus available for board/class/subject")

const (
	// suggestionThreshold is the minimum combined similarity for a TOC
	// entry to be offered as a suggestion.
	suggestionThreshold = 0.2
	// maxSuggestions caps the suggestion list.
	maxSuggestions = 5
)

// Resolution is the outcome of resolving a requested chapter name.
type Resolution struct {
	Found       bool               `json:"found"`
	ExactMatch  bool               `json:"exact_match"`
	TOC         []string           `json:"toc"`
	Suggestions []types.Suggestion `json:"suggestions,omitempty"`

	// Chapter is the resolved catalog entry when ExactMatch is true.
	Chapter *Chapter `json:"chapter,omitempty"`
}

// Matcher resolves chapter names against the syllabus catalog.
type Matcher struct {
	catalog *Catalog
	logger  *slog.Logger
}

// MatcherConfig configures a new Matcher.
type MatcherConfig struct {
	// Catalog overrides the embedded catalog (tests, custom boards).
	Catalog *Catalog
	Logger  *slog.Logger
}

// NewMatcher creates a Matcher, loading the embedded catalog unless
// one is provided.
func NewMatcher(cfg MatcherConfig) (*Matcher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := cfg.Catalog
	if catalog == nil {
		var err error
		catalog, err = LoadEmbeddedCatalog()
		if err != nil {
			return nil, err
		}
	}

	return &Matcher{
		catalog: catalog,
		logger:  logger.With("component", "syllabus"),
	}, nil
}

// Resolve matches a requested chapter name against the ordered TOC for
// the triple. Exact normalized equality wins; otherwise every entry is
// fuzzy-scored and entries above the threshold become ranked
// suggestions. A missing triple returns ErrSyllabusUnavailable.
func (m *Matcher) Resolve(board string, classLevel int, subject, requested string) (*Resolution, error) {
	subj := m.catalog.subject(board, classLevel, subject)
	if subj == nil || len(subj.Chapters) == 0 {
		return nil, ErrSyllabusUnavailable
	}

	res := &Resolution{TOC: make([]string, 0, len(subj.Chapters))}
	for _, ch := range subj.Chapters {
		res.TOC = append(res.TOC, ch.Title)
	}

	wanted := textmatch.Normalize(requested)
	for i := range subj.Chapters {
		if textmatch.Normalize(subj.Chapters[i].Title) == wanted {
			res.Found = true
			res.ExactMatch = true
			res.Chapter = &subj.Chapters[i]
			return res, nil
		}
	}

	for _, ch := range subj.Chapters {
		score := scoreEntry(requested, ch.Title)
		if score > suggestionThreshold {
			res.Suggestions = append(res.Suggestions, types.Suggestion{Title: ch.Title, Score: score})
		}
	}
	sort.SliceStable(res.Suggestions, func(i, j int) bool {
		return res.Suggestions[i].Score > res.Suggestions[j].Score
	})
	if len(res.Suggestions) > maxSuggestions {
		res.Suggestions = res.Suggestions[:maxSuggestions]
	}

	res.Found = len(res.Suggestions) > 0
	m.logger.Debug("fuzzy chapter resolution",
		"requested", requested,
		"suggestions", len(res.Suggestions),
	)
	return res, nil
}

// TableOfContents returns the ordered chapter titles for a triple.
func (m *Matcher) TableOfContents(board string, classLevel int, subject string) ([]string, error) {
	subj := m.catalog.subject(board, classLevel, subject)
	if subj == nil || len(subj.Chapters) == 0 {
		return nil, ErrSyllabusUnavailable
	}
	toc := make([]string, 0, len(subj.Chapters))
	for _, ch := range subj.Chapters {
		toc = append(toc, ch.Title)
	}
	return toc, nil
}

// scoreEntry scores a TOC entry against the requested name. Whole-title
// similarity is boosted by the best per-word match so that a one-word
// query like "vector" still surfaces "Vectors and Equilibrium".
func scoreEntry(requested, title string) float64 {
	best := textmatch.Combined(requested, title)
	for _, w := range strings.Fields(textmatch.Normalize(title)) {
		if s := textmatch.Combined(requested, w); s > best {
			best = s
		}
	}
	return best
}
