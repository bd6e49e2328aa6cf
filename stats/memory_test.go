package stats_test

import (
	"context"
	"testing"

	"github.com/hscells/prf/preprocess"
	"github.com/hscells/prf/stats"
)

// brownFox is a two document collection: 10 terms, "the" and "brown" occurring twice.
func brownFox() *stats.MemoryStatisticsSource {
	return stats.NewMemoryStatisticsSourceFromTerms(map[string][]string{
		"D1": {"the", "quick", "brown", "fox", "jumps"},
		"D2": {"brown", "bear", "in", "the", "woods"},
	})
}

func TestMemoryStatisticsSource(t *testing.T) {
	ctx := context.Background()
	s := brownFox()

	total, err := s.TotalCollectionTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 10 {
		t.Fatalf("expected 10 collection terms, got %d", total)
	}

	n, err := s.DocumentCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 documents, got %d", n)
	}

	cf, err := s.CollectionFrequency(ctx, "brown")
	if err != nil {
		t.Fatal(err)
	}
	df, err := s.DocumentFrequency(ctx, "brown")
	if err != nil {
		t.Fatal(err)
	}
	if cf != 2 || df != 2 {
		t.Fatalf("expected cf = df = 2 for brown, got cf=%d df=%d", cf, df)
	}

	tf, err := s.TermFrequency(ctx, "fox", "D2")
	if err != nil {
		t.Fatal(err)
	}
	if tf != 0 {
		t.Fatalf("expected fox not to occur in D2, got tf=%d", tf)
	}

	tv, err := s.TermVector(ctx, "D1")
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"brown", "fox", "jumps", "quick", "the"}
	if len(tv) != len(expected) {
		t.Fatalf("expected %d terms, got %d", len(expected), len(tv))
	}
	for i, term := range expected {
		if tv[i].Term != term {
			t.Errorf("term %d: expected %s, got %s", i, term, tv[i].Term)
		}
		if tv[i].TermFrequency != 1 {
			t.Errorf("term %s: expected tf 1, got %d", term, tv[i].TermFrequency)
		}
	}
}

func TestMemoryStatisticsSourceErrors(t *testing.T) {
	ctx := context.Background()
	s := brownFox()

	if _, err := s.DocumentLength(ctx, "D3"); !stats.IsMissingDocument(err) {
		t.Fatalf("expected a missing document, got %v", err)
	}
	if _, err := s.TermVector(ctx, "D3"); !stats.IsMissingDocument(err) {
		t.Fatalf("expected a missing document, got %v", err)
	}
	if _, err := s.CollectionFrequency(ctx, "zebra"); !stats.IsUnknownTerm(err) {
		t.Fatalf("expected an unknown term, got %v", err)
	}
	if _, err := s.DocumentFrequency(ctx, "zebra"); !stats.IsUnknownTerm(err) {
		t.Fatalf("expected an unknown term, got %v", err)
	}
}

func TestNewMemoryStatisticsSource(t *testing.T) {
	s := stats.NewMemoryStatisticsSource(preprocess.NewAnalyser(),
		stats.Document{ID: "1", Text: "The foxes were jumping over the fences."},
		stats.Document{ID: "2", Text: "A fence."})

	vocab := s.Vocabulary()
	expected := []string{"fenc", "fox", "jump"}
	if len(vocab) != len(expected) {
		t.Fatalf("expected vocabulary %v, got %v", expected, vocab)
	}
	for i := range expected {
		if vocab[i] != expected[i] {
			t.Fatalf("expected vocabulary %v, got %v", expected, vocab)
		}
	}

	docs := s.Documents()
	if len(docs) != 2 || docs[0] != "1" || docs[1] != "2" {
		t.Fatalf("unexpected documents %v", docs)
	}
}
