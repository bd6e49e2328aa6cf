package stats

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

// DocumentLanguageModel is a Dirichlet smoothed language model of a single document:
//
//	P(t|d) = (tf(t,d) + mu * P(t|C)) / (|d| + mu), P(t|C) = cf(t) / |C|
//
// Probabilities of the terms observed in the document are computed up front. Terms not in the document only receive
// smoothing mass, which is looked up on request.
type DocumentLanguageModel struct {
	Document string
	Length   uint64
	Mu       float64

	collectionTerms float64
	probabilities   map[string]float64
	source          StatisticsSource
}

// NewDocumentLanguageModel creates the language model of a document using the statistics of a source. If the source
// cannot resolve the document the error wraps ErrMissingDocument.
func NewDocumentLanguageModel(ctx context.Context, source StatisticsSource, document string, mu float64) (*DocumentLanguageModel, error) {
	if mu <= 0 {
		return nil, errors.Errorf("dirichlet smoothing parameter must be positive, got %v", mu)
	}

	length, err := source.DocumentLength(ctx, document)
	if err != nil {
		return nil, err
	}

	total, err := source.TotalCollectionTerms(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not get collection size")
	}

	lm := &DocumentLanguageModel{
		Document:        document,
		Length:          length,
		Mu:              mu,
		collectionTerms: float64(total),
		source:          source,
	}

	// A document without any terms is the background model.
	if length == 0 {
		lm.probabilities = make(map[string]float64)
		return lm, nil
	}

	tv, err := source.TermVector(ctx, document)
	if err != nil {
		return nil, err
	}

	lm.probabilities = make(map[string]float64, len(tv))
	for _, term := range tv {
		if term.TermFrequency == 0 {
			continue
		}
		lm.probabilities[term.Term] = lm.dirichlet(float64(term.TermFrequency), float64(term.CollectionFrequency))
	}
	return lm, nil
}

func (lm *DocumentLanguageModel) dirichlet(tf, cf float64) float64 {
	var background float64
	if lm.collectionTerms > 0 {
		background = cf / lm.collectionTerms
	}
	return (tf + lm.Mu*background) / (float64(lm.Length) + lm.Mu)
}

// Observed returns the probability of a term that occurs in the document.
func (lm *DocumentLanguageModel) Observed(term string) (float64, bool) {
	p, ok := lm.probabilities[term]
	return p, ok
}

// Terms are the distinct terms observed in the document in lexicographic order.
func (lm *DocumentLanguageModel) Terms() []string {
	terms := make([]string, 0, len(lm.probabilities))
	for term := range lm.probabilities {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Len is the number of distinct terms observed in the document.
func (lm *DocumentLanguageModel) Len() int {
	return len(lm.probabilities)
}

// Probability is the smoothed probability of any term. Terms that are not in the collection return an error wrapping
// ErrUnknownTerm.
func (lm *DocumentLanguageModel) Probability(ctx context.Context, term string) (float64, error) {
	if p, ok := lm.probabilities[term]; ok {
		return p, nil
	}
	cf, err := lm.source.CollectionFrequency(ctx, term)
	if err != nil {
		return 0, err
	}
	return lm.dirichlet(0, float64(cf)), nil
}
