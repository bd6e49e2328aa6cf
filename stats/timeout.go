package stats

import (
	"context"
	"time"
)

// TimeoutStatisticsSource bounds every per-document lookup of a slow or remote source. A lookup that runs out of time
// is reported as a missing document, so the relevance model skips that document rather than stalling the query.
type TimeoutStatisticsSource struct {
	StatisticsSource
	timeout time.Duration
}

// Timeout wraps a source so that each document lookup takes at most d.
func Timeout(source StatisticsSource, d time.Duration) *TimeoutStatisticsSource {
	return &TimeoutStatisticsSource{StatisticsSource: source, timeout: d}
}

// expired converts a deadline of the per-document context into ErrMissingDocument. Cancellation of the parent context
// is passed through untouched.
func (t *TimeoutStatisticsSource) expired(parent, ctx context.Context, document string, err error) error {
	if err != nil && parent.Err() == nil && ctx.Err() == context.DeadlineExceeded {
		return missingDocument(document)
	}
	return err
}

// TermVector retrieves the term vector for a document.
func (t *TimeoutStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	c, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	tv, err := t.StatisticsSource.TermVector(c, document)
	return tv, t.expired(ctx, c, document, err)
}

// TermFrequency is the number of times a term occurs in a document.
func (t *TimeoutStatisticsSource) TermFrequency(ctx context.Context, term, document string) (uint64, error) {
	c, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	tf, err := t.StatisticsSource.TermFrequency(c, term, document)
	return tf, t.expired(ctx, c, document, err)
}

// DocumentLength is the number of terms in a document.
func (t *TimeoutStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	c, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	l, err := t.StatisticsSource.DocumentLength(c, document)
	return l, t.expired(ctx, c, document, err)
}
