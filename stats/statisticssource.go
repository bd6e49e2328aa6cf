// Package stats provides implementations of statistic sources.
package stats

import (
	"context"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrMissingDocument indicates a statistics source could not resolve a document identifier.
	ErrMissingDocument = errors.New("missing document")
	// ErrUnknownTerm indicates a term does not occur anywhere in the collection.
	ErrUnknownTerm = errors.New("unknown term")
)

// TermVectorTerm is a term inside a term vector.
type TermVectorTerm struct {
	Term                string
	TermFrequency       uint64
	DocumentFrequency   uint64
	CollectionFrequency uint64
}

// TermVector is a standard format for returning term vectors from statistic sources.
type TermVector []TermVectorTerm

// Sort orders the term vector by term so that iteration over it is deterministic.
func (tv TermVector) Sort() {
	sort.Slice(tv, func(i, j int) bool {
		return tv[i].Term < tv[j].Term
	})
}

// StatisticsSource represents the way statistics are calculated for a collection. Implementations must be safe for
// concurrent read-only use by many goroutines. A document or term that cannot be resolved is reported with
// ErrMissingDocument or ErrUnknownTerm, never as a zero count.
type StatisticsSource interface {
	// TermVector is every distinct term of a document along with its statistics.
	TermVector(ctx context.Context, document string) (TermVector, error)
	// TermFrequency is the number of times a term occurs in a document.
	TermFrequency(ctx context.Context, term, document string) (uint64, error)
	// DocumentLength is the number of terms in a document.
	DocumentLength(ctx context.Context, document string) (uint64, error)
	// CollectionFrequency is the number of times a term occurs in the collection.
	CollectionFrequency(ctx context.Context, term string) (uint64, error)
	// DocumentFrequency is the number of documents containing a term.
	DocumentFrequency(ctx context.Context, term string) (uint64, error)
	// TotalCollectionTerms is the number of terms in the collection.
	TotalCollectionTerms(ctx context.Context) (uint64, error)
	// DocumentCount is the number of documents in the collection.
	DocumentCount(ctx context.Context) (uint64, error)
}

// IsMissingDocument reports whether err was caused by a document the source could not resolve.
func IsMissingDocument(err error) bool {
	return errors.Is(err, ErrMissingDocument)
}

// IsUnknownTerm reports whether err was caused by a term that is not in the collection.
func IsUnknownTerm(err error) bool {
	return errors.Is(err, ErrUnknownTerm)
}

func missingDocument(document string) error {
	return errors.Wrapf(ErrMissingDocument, "document %q", document)
}

func unknownTerm(term string) error {
	return errors.Wrapf(ErrUnknownTerm, "term %q", term)
}
