package stats

import (
	"context"
	"sort"

	"github.com/hscells/prf/preprocess"
)

// Document is a piece of raw text to be indexed.
type Document struct {
	ID   string
	Text string
}

// MemoryStatisticsSource is a statistics source over a small collection held entirely in memory. It is immutable once
// created, so it can be shared by any number of goroutines.
type MemoryStatisticsSource struct {
	documents  map[string]map[string]uint64
	lengths    map[string]uint64
	collection map[string]uint64
	df         map[string]uint64
	total      uint64
}

// NewMemoryStatisticsSource analyses and indexes documents. Later documents with the same identifier replace earlier
// ones.
func NewMemoryStatisticsSource(analyser preprocess.Analyser, documents ...Document) *MemoryStatisticsSource {
	terms := make(map[string][]string, len(documents))
	for _, doc := range documents {
		terms[doc.ID] = analyser.Analyse(doc.Text)
	}
	return NewMemoryStatisticsSourceFromTerms(terms)
}

// NewMemoryStatisticsSourceFromTerms indexes documents which have already been analysed into terms.
func NewMemoryStatisticsSourceFromTerms(documents map[string][]string) *MemoryStatisticsSource {
	m := &MemoryStatisticsSource{
		documents:  make(map[string]map[string]uint64, len(documents)),
		lengths:    make(map[string]uint64, len(documents)),
		collection: make(map[string]uint64),
		df:         make(map[string]uint64),
	}

	for id, terms := range documents {
		tf := make(map[string]uint64)
		for _, term := range terms {
			tf[term]++
			m.collection[term]++
		}
		for term := range tf {
			m.df[term]++
		}
		m.documents[id] = tf
		m.lengths[id] = uint64(len(terms))
		m.total += uint64(len(terms))
	}
	return m
}

// TermVector is every distinct term of a document in lexicographic order.
func (m *MemoryStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	tf, ok := m.documents[document]
	if !ok {
		return nil, missingDocument(document)
	}
	tv := make(TermVector, 0, len(tf))
	for term, count := range tf {
		tv = append(tv, TermVectorTerm{
			Term:                term,
			TermFrequency:       count,
			DocumentFrequency:   m.df[term],
			CollectionFrequency: m.collection[term],
		})
	}
	tv.Sort()
	return tv, nil
}

// TermFrequency is the number of times a term occurs in a document.
func (m *MemoryStatisticsSource) TermFrequency(ctx context.Context, term, document string) (uint64, error) {
	tf, ok := m.documents[document]
	if !ok {
		return 0, missingDocument(document)
	}
	return tf[term], nil
}

// DocumentLength is the number of terms in a document.
func (m *MemoryStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	l, ok := m.lengths[document]
	if !ok {
		return 0, missingDocument(document)
	}
	return l, nil
}

// CollectionFrequency is the number of times a term occurs in the collection.
func (m *MemoryStatisticsSource) CollectionFrequency(ctx context.Context, term string) (uint64, error) {
	cf, ok := m.collection[term]
	if !ok {
		return 0, unknownTerm(term)
	}
	return cf, nil
}

// DocumentFrequency is the number of documents containing a term.
func (m *MemoryStatisticsSource) DocumentFrequency(ctx context.Context, term string) (uint64, error) {
	df, ok := m.df[term]
	if !ok {
		return 0, unknownTerm(term)
	}
	return df, nil
}

// TotalCollectionTerms is the number of terms in the collection.
func (m *MemoryStatisticsSource) TotalCollectionTerms(ctx context.Context) (uint64, error) {
	return m.total, nil
}

// DocumentCount is the number of documents in the collection.
func (m *MemoryStatisticsSource) DocumentCount(ctx context.Context) (uint64, error) {
	return uint64(len(m.documents)), nil
}

// Vocabulary is every term of the collection in lexicographic order.
func (m *MemoryStatisticsSource) Vocabulary() []string {
	vocab := make([]string, 0, len(m.collection))
	for term := range m.collection {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)
	return vocab
}

// Documents is every document identifier in lexicographic order.
func (m *MemoryStatisticsSource) Documents() []string {
	docs := make([]string, 0, len(m.documents))
	for id := range m.documents {
		docs = append(docs, id)
	}
	sort.Strings(docs)
	return docs
}
