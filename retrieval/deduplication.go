package retrieval

import (
	"github.com/hscells/trecresults"
)

// Deduplicator removes repeated documents from a result list, keeping the first (highest ranked) occurrence. A run
// listing a document twice would otherwise count it twice as feedback.
type Deduplicator struct{}

// Handle removes duplicate documents from the list in place.
func (d Deduplicator) Handle(list *trecresults.ResultList) error {
	seen := make(map[string]bool, len(*list))
	a := (*list)[:0]
	for _, result := range *list {
		if seen[result.DocId] {
			continue
		}
		seen[result.DocId] = true
		a = append(a, result)
	}
	*list = a
	return nil
}

// NewDeduplicator creates a new duplicate document handler.
func NewDeduplicator() Deduplicator {
	return Deduplicator{}
}
