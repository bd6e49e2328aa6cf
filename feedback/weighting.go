package feedback

import (
	"fmt"
	"strings"

	"github.com/hscells/prf/retrieval"
	"gonum.org/v1/gonum/floats"
)

// DocumentWeighting decides how much each feedback document contributes to the relevance model. The weights returned
// for a set of documents sum to one.
type DocumentWeighting interface {
	Name() string
	Weights(docs retrieval.FeedbackDocuments) []float64
}

type uniformWeighting struct{}

// UniformWeighting gives every feedback document the same weight, ignoring its retrieval score.
var UniformWeighting DocumentWeighting = uniformWeighting{}

func (uniformWeighting) Name() string {
	return "uniform"
}

func (uniformWeighting) Weights(docs retrieval.FeedbackDocuments) []float64 {
	w := make([]float64, len(docs))
	for i := range w {
		w[i] = 1 / float64(len(docs))
	}
	return w
}

type scoreWeighting struct{}

// ScoreWeighting weights feedback documents in proportion to their original retrieval score. Scores that are not all
// positive (e.g. log likelihoods) are first shifted so that the lowest scoring document has a score of one.
var ScoreWeighting DocumentWeighting = scoreWeighting{}

func (scoreWeighting) Name() string {
	return "score"
}

func (scoreWeighting) Weights(docs retrieval.FeedbackDocuments) []float64 {
	if len(docs) == 0 {
		return nil
	}
	w := docs.Scores()
	if min := floats.Min(w); min <= 0 {
		floats.AddConst(1-min, w)
	}
	sum := floats.Sum(w)
	if sum <= 0 || isInfOrNaN(sum) {
		return UniformWeighting.Weights(docs)
	}
	floats.Scale(1/sum, w)
	return w
}

// DocumentWeightingNames are the names accepted by NewDocumentWeighting.
var DocumentWeightingNames = []string{UniformWeighting.Name(), ScoreWeighting.Name()}

// NewDocumentWeighting returns the document weighting policy with the given name.
func NewDocumentWeighting(name string) (DocumentWeighting, error) {
	switch strings.ToLower(name) {
	case UniformWeighting.Name():
		return UniformWeighting, nil
	case ScoreWeighting.Name():
		return ScoreWeighting, nil
	}
	return nil, fmt.Errorf("unknown document weighting %q (supported: %s)", name, strings.Join(DocumentWeightingNames, ", "))
}
