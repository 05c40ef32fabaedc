package syllabus

import (
	"errors"
	"testing"
)

func testCatalog() *Catalog {
	return &Catalog{
		Boards: []Board{
			{
				Name: "FBISE",
				Classes: []Class{
					{
						Level: 11,
						Subjects: []Subject{
							{
								Name: "Physics",
								Chapters: []Chapter{
									{Title: "Vectors and Equilibrium", Topics: []string{"Basic Concepts of Vectors", "Torque"}},
									{Title: "Motion and Force"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func newTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(MatcherConfig{Catalog: testCatalog()})
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}
	return m
}

func TestResolveExactMatch(t *testing.T) {
	m := newTestMatcher(t)

	res, err := m.Resolve("FBISE", 11, "Physics", "Vectors and Equilibrium")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Found || !res.ExactMatch {
		t.Errorf("expected found+exact, got found=%v exact=%v", res.Found, res.ExactMatch)
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("exact match should carry no suggestions, got %d", len(res.Suggestions))
	}
	if res.Chapter == nil || len(res.Chapter.Topics) != 2 {
		t.Error("expected resolved chapter with its declared topics")
	}
	if len(res.TOC) != 2 {
		t.Errorf("expected full TOC, got %d entries", len(res.TOC))
	}
}

func TestResolveExactMatchIsNormalized(t *testing.T) {
	m := newTestMatcher(t)

	res, err := m.Resolve("FBISE", 11, "Physics", "  vectors AND equilibrium!! ")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.ExactMatch {
		t.Error("expected normalized exact match")
	}
}

func TestResolveFuzzySuggestions(t *testing.T) {
	m := newTestMatcher(t)

	res, err := m.Resolve("FBISE", 11, "Physics", "vector")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Found {
		t.Fatal("expected found=true for fuzzy match")
	}
	if res.ExactMatch {
		t.Fatal("expected exactMatch=false for fuzzy match")
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	if res.Suggestions[0].Title != "Vectors and Equilibrium" {
		t.Errorf("top suggestion = %q, want %q", res.Suggestions[0].Title, "Vectors and Equilibrium")
	}
	for i := 1; i < len(res.Suggestions); i++ {
		if res.Suggestions[i].Score > res.Suggestions[i-1].Score {
			t.Error("suggestions not sorted descending by score")
		}
	}
}

func TestResolveNoMatch(t *testing.T) {
	m := newTestMatcher(t)

	res, err := m.Resolve("FBISE", 11, "Physics", "zzzzqqq")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Found {
		t.Error("expected found=false when nothing clears the threshold")
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(res.Suggestions))
	}
}

func TestResolveSyllabusUnavailable(t *testing.T) {
	m := newTestMatcher(t)

	_, err := m.Resolve("FBISE", 11, "History", "anything")
	if !errors.Is(err, ErrSyllabusUnavailable) {
		t.Errorf("expected ErrSyllabusUnavailable, got %v", err)
	}

	_, err = m.Resolve("Unknown Board", 11, "Physics", "anything")
	if !errors.Is(err, ErrSyllabusUnavailable) {
		t.Errorf("expected ErrSyllabusUnavailable for unknown board, got %v", err)
	}
}

func TestEmbeddedCatalogLoads(t *testing.T) {
	m, err := NewMatcher(MatcherConfig{})
	if err != nil {
		t.Fatalf("NewMatcher() with embedded catalog error = %v", err)
	}

	res, err := m.Resolve("FBISE", 11, "Physics", "Vectors and Equilibrium")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.ExactMatch {
		t.Error("embedded catalog should contain Vectors and Equilibrium for FBISE 11 Physics")
	}
	if res.Chapter == nil || len(res.Chapter.Topics) == 0 {
		t.Error("expected declared topics for Vectors and Equilibrium")
	}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics("Physics", "Circular Motion")
	if len(topics) == 0 {
		t.Fatal("expected non-empty topic template")
	}
	for _, topic := range topics {
		if topic == "" {
			t.Error("empty topic in template")
		}
	}
	if topics[0] != "Introduction to Circular Motion" {
		t.Errorf("unexpected first template topic: %q", topics[0])
	}
}
