// Package feedback estimates relevance models from pseudo-relevant documents and uses them to expand queries (RM3).
package feedback

import (
	"context"
	"math"
	"regexp"

	"github.com/hscells/prf/query"
	"github.com/hscells/prf/retrieval"
	"github.com/hscells/prf/stats"
	"github.com/pkg/errors"
)

// ErrNoFeedbackAvailable indicates that none of the feedback documents of a query could be used, so the query cannot be
// expanded. It is not fatal: the original query is still returned.
var ErrNoFeedbackAvailable = errors.New("no feedback available")

var alphaNumericTerm = regexp.MustCompile(`^[a-z0-9]+$`)

// TermFilter removes uninformative terms from a relevance model before it is truncated.
type TermFilter struct {
	// MinLength drops terms with fewer characters.
	MinLength int
	// AlphaNumeric drops terms which are not entirely lowercase letters and digits.
	AlphaNumeric bool
	// MaxDocumentFrequencyRatio drops terms occurring in more than this fraction of the collection; zero disables it.
	MaxDocumentFrequencyRatio float64
}

// AnseriniTermFilter is the filter applied to feedback terms by the Anserini RM3 implementation.
var AnseriniTermFilter = TermFilter{MinLength: 2, AlphaNumeric: true, MaxDocumentFrequencyRatio: 0.1}

// RelevanceModelBuilder estimates relevance models from feedback documents and interpolates them with queries. A
// builder holds no per-query state, so one builder can serve many goroutines.
type RelevanceModelBuilder struct {
	source            stats.StatisticsSource
	mu                float64
	feedbackDocuments int
	weighting         DocumentWeighting
	filter            *TermFilter
	onMissingDocument func(document string, err error)
}

// RelevanceModelMu sets the Dirichlet smoothing parameter of the document language models.
func RelevanceModelMu(mu float64) func(*RelevanceModelBuilder) {
	return func(b *RelevanceModelBuilder) {
		b.mu = mu
	}
}

// RelevanceModelFeedbackDocuments sets the maximum number of feedback documents consulted (fbDocs).
func RelevanceModelFeedbackDocuments(n int) func(*RelevanceModelBuilder) {
	return func(b *RelevanceModelBuilder) {
		b.feedbackDocuments = n
	}
}

// RelevanceModelWeighting sets the per-document weighting policy.
func RelevanceModelWeighting(w DocumentWeighting) func(*RelevanceModelBuilder) {
	return func(b *RelevanceModelBuilder) {
		b.weighting = w
	}
}

// RelevanceModelTermFilter filters feedback terms.
func RelevanceModelTermFilter(f TermFilter) func(*RelevanceModelBuilder) {
	return func(b *RelevanceModelBuilder) {
		b.filter = &f
	}
}

// RelevanceModelMissingDocument is called for every feedback document that had to be skipped.
func RelevanceModelMissingDocument(fn func(document string, err error)) func(*RelevanceModelBuilder) {
	return func(b *RelevanceModelBuilder) {
		b.onMissingDocument = fn
	}
}

// NewRelevanceModelBuilder creates a builder over a statistics source. By default it uses ten feedback documents
// weighted uniformly and mu = 1000.
func NewRelevanceModelBuilder(source stats.StatisticsSource, options ...func(*RelevanceModelBuilder)) RelevanceModelBuilder {
	b := RelevanceModelBuilder{
		source:            source,
		mu:                1000,
		feedbackDocuments: 10,
		weighting:         UniformWeighting,
	}
	for _, option := range options {
		option(&b)
	}
	return b
}

// RelevanceModel estimates a relevance model of at most fbTerms terms from the feedback documents. Feedback documents
// the statistics source cannot resolve are skipped. When no document can be used, or the filter leaves no term, the
// error is ErrNoFeedbackAvailable.
func (b RelevanceModelBuilder) RelevanceModel(ctx context.Context, docs retrieval.FeedbackDocuments, fbTerms int) (query.Model, error) {
	if fbTerms <= 0 {
		return nil, errors.Errorf("number of feedback terms must be positive, got %d", fbTerms)
	}
	if len(docs) > b.feedbackDocuments {
		docs = docs[:b.feedbackDocuments]
	}

	var (
		usable retrieval.FeedbackDocuments
		models []*stats.DocumentLanguageModel
	)
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lm, err := stats.NewDocumentLanguageModel(ctx, b.source, doc.ID, b.mu)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if b.onMissingDocument != nil {
				b.onMissingDocument(doc.ID, err)
			}
			continue
		}
		usable = append(usable, doc)
		models = append(models, lm)
	}
	if len(usable) == 0 {
		return nil, ErrNoFeedbackAvailable
	}

	// Only terms observed in a document receive weight from it.
	weights := b.weighting.Weights(usable)
	rm := make(query.Model)
	for i, lm := range models {
		for _, term := range lm.Terms() {
			p, _ := lm.Observed(term)
			rm[term] += weights[i] * p
		}
	}

	if b.filter != nil {
		var err error
		rm, err = b.filter.apply(ctx, b.source, rm)
		if err != nil {
			return nil, err
		}
	}
	if len(rm) == 0 {
		return nil, ErrNoFeedbackAvailable
	}

	return rm.Truncate(fbTerms).Normalise(), nil
}

// BuildExpandedQuery expands a query with the relevance model of its feedback documents:
//
//	expanded(t) = originalQueryWeight * original(t) + (1 - originalQueryWeight) * rm(t)
//
// where both distributions are normalised first and the result is normalised again. If no feedback is available, the
// normalised original query is returned together with ErrNoFeedbackAvailable.
func (b RelevanceModelBuilder) BuildExpandedQuery(ctx context.Context, original query.Model, docs retrieval.FeedbackDocuments, fbTerms int, originalQueryWeight float64) (query.Model, error) {
	if originalQueryWeight < 0 || originalQueryWeight > 1 || math.IsNaN(originalQueryWeight) {
		return nil, errors.Errorf("original query weight must be in [0,1], got %v", originalQueryWeight)
	}

	orig := original.Normalise()
	rm, err := b.RelevanceModel(ctx, docs, fbTerms)
	if err == ErrNoFeedbackAvailable {
		return orig, err
	}
	if err != nil {
		return nil, err
	}
	return query.Interpolate(orig, rm, originalQueryWeight).Normalise(), nil
}

func (f TermFilter) apply(ctx context.Context, source stats.StatisticsSource, rm query.Model) (query.Model, error) {
	var n float64
	if f.MaxDocumentFrequencyRatio > 0 {
		count, err := source.DocumentCount(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "could not get document count")
		}
		n = float64(count)
	}

	filtered := make(query.Model, len(rm))
	for term, w := range rm {
		if len(term) < f.MinLength {
			continue
		}
		if f.AlphaNumeric && !alphaNumericTerm.MatchString(term) {
			continue
		}
		if n > 0 {
			df, err := source.DocumentFrequency(ctx, term)
			if stats.IsUnknownTerm(err) {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "document frequency of %q", term)
			}
			if float64(df)/n > f.MaxDocumentFrequencyRatio {
				continue
			}
		}
		filtered[term] = w
	}
	return filtered, nil
}

func isInfOrNaN(f float64) bool {
	return math.IsInf(f, 0) || math.IsNaN(f)
}
