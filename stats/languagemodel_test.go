package stats_test

import (
	"context"
	"math"
	"testing"

	"github.com/hscells/prf/stats"
)

func TestDocumentLanguageModel(t *testing.T) {
	ctx := context.Background()
	s := brownFox()

	lm, err := stats.NewDocumentLanguageModel(ctx, s, "D1", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if lm.Len() != 5 {
		t.Fatalf("expected 5 observed terms, got %d", lm.Len())
	}

	// (1 + 1000 * 2/10) / (5 + 1000)
	brown, ok := lm.Observed("brown")
	if !ok {
		t.Fatal("expected brown to be observed")
	}
	if math.Abs(brown-201.0/1005.0) > 1e-12 {
		t.Fatalf("unexpected probability for brown %v", brown)
	}

	// (1 + 1000 * 1/10) / (5 + 1000)
	fox, _ := lm.Observed("fox")
	if math.Abs(fox-101.0/1005.0) > 1e-12 {
		t.Fatalf("unexpected probability for fox %v", fox)
	}

	if _, ok := lm.Observed("bear"); ok {
		t.Fatal("bear does not occur in D1")
	}

	// Unobserved terms only receive smoothing mass: (0 + 1000 * 1/10) / (5 + 1000).
	bear, err := lm.Probability(ctx, "bear")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(bear-100.0/1005.0) > 1e-12 {
		t.Fatalf("unexpected probability for bear %v", bear)
	}

	if _, err := lm.Probability(ctx, "zebra"); !stats.IsUnknownTerm(err) {
		t.Fatalf("expected an unknown term, got %v", err)
	}
}

func TestDocumentLanguageModelSumsToOne(t *testing.T) {
	ctx := context.Background()
	s := brownFox()

	for _, doc := range s.Documents() {
		lm, err := stats.NewDocumentLanguageModel(ctx, s, doc, 1000)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		for _, term := range s.Vocabulary() {
			p, err := lm.Probability(ctx, term)
			if err != nil {
				t.Fatal(err)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("%s: probabilities over the vocabulary sum to %v", doc, sum)
		}
	}
}

func TestDocumentLanguageModelEmptyDocument(t *testing.T) {
	ctx := context.Background()
	s := stats.NewMemoryStatisticsSourceFromTerms(map[string][]string{
		"D1":    {"a", "b", "b"},
		"empty": {},
	})

	lm, err := stats.NewDocumentLanguageModel(ctx, s, "empty", 10)
	if err != nil {
		t.Fatal(err)
	}
	if lm.Len() != 0 {
		t.Fatalf("expected no observed terms, got %d", lm.Len())
	}
	p, err := lm.Probability(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-2.0/3.0) > 1e-12 {
		t.Fatalf("expected the background probability of b, got %v", p)
	}
}

func TestDocumentLanguageModelErrors(t *testing.T) {
	ctx := context.Background()
	s := brownFox()

	if _, err := stats.NewDocumentLanguageModel(ctx, s, "D3", 1000); !stats.IsMissingDocument(err) {
		t.Fatalf("expected a missing document, got %v", err)
	}
	if _, err := stats.NewDocumentLanguageModel(ctx, s, "D1", 0); err == nil {
		t.Fatal("expected mu of zero to be rejected")
	}
}
