package query

import (
	"sort"

	"github.com/xtgo/set"
	"gonum.org/v1/gonum/floats"
)

// Model is a weighted bag of terms: the original representation of a query, a relevance model, or an expanded query.
type Model map[string]float64

// WeightedTerm is a term of a model together with its weight.
type WeightedTerm struct {
	Term   string
	Weight float64
}

// FromTerms creates a model giving every distinct term the same weight.
func FromTerms(terms []string) Model {
	m := make(Model, len(terms))
	for _, t := range terms {
		m[t] = 1
	}
	return m
}

// Terms are the terms of the model in lexicographic order.
func (m Model) Terms() []string {
	terms := make([]string, 0, len(m))
	for t := range m {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Sum is the total weight of the model. The weights are summed in term order so the result is reproducible.
func (m Model) Sum() float64 {
	terms := m.Terms()
	w := make([]float64, len(terms))
	for i, t := range terms {
		w[i] = m[t]
	}
	return floats.Sum(w)
}

// Normalise returns a copy of the model whose weights sum to one. A model with no positive mass is copied as is.
func (m Model) Normalise() Model {
	n := make(Model, len(m))
	sum := m.Sum()
	for t, w := range m {
		if sum > 0 {
			n[t] = w / sum
		} else {
			n[t] = w
		}
	}
	return n
}

// Ranked orders the terms of the model by descending weight, breaking ties by the lexicographic order of the terms.
func (m Model) Ranked() []WeightedTerm {
	ranked := make([]WeightedTerm, 0, len(m))
	for t, w := range m {
		ranked = append(ranked, WeightedTerm{Term: t, Weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Term < ranked[j].Term
	})
	return ranked
}

// Truncate keeps the n highest ranked terms of the model.
func (m Model) Truncate(n int) Model {
	ranked := m.Ranked()
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	t := make(Model, len(ranked))
	for _, wt := range ranked {
		t[wt.Term] = wt.Weight
	}
	return t
}

// Interpolate mixes two models over the union of their terms:
//
//	lambda * original(t) + (1 - lambda) * feedback(t)
//
// A term missing from one of the models has weight zero in it. Terms whose mixed weight is zero are left out, so that
// lambda of one or zero reproduces exactly the terms of one of the models. The result is not normalised.
func Interpolate(original, feedback Model, lambda float64) Model {
	a, b := original.Terms(), feedback.Terms()
	union := append(append(make([]string, 0, len(a)+len(b)), a...), b...)
	union = union[:set.Union(sort.StringSlice(union), len(a))]

	m := make(Model, len(union))
	for _, t := range union {
		w := lambda*original[t] + (1-lambda)*feedback[t]
		if w == 0 {
			continue
		}
		m[t] = w
	}
	return m
}
