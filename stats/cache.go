package stats

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

// CachedStatisticsSource memoises the lookups a relevance model makes most often (term vectors, document lengths, and
// collection frequencies) in a bounded LRU cache. Concurrent requests for the same key are collapsed into a single
// request to the underlying source. Errors are never cached.
type CachedStatisticsSource struct {
	StatisticsSource
	cache *lru.Cache
	group singleflight.Group
}

// NewCachedStatisticsSource wraps a source with a cache of at most size entries.
func NewCachedStatisticsSource(source StatisticsSource, size int) (*CachedStatisticsSource, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedStatisticsSource{
		StatisticsSource: source,
		cache:            cache,
	}, nil
}

// fillAbandoned is the error of a shared lookup whose context ended before the lookup finished.
type fillAbandoned struct {
	err error
}

func (f fillAbandoned) Error() string {
	return f.err.Error()
}

// get returns the cached value of key, calling fn to fill it. A lookup is shared by every concurrent caller but runs
// under the context of the caller that started it; if that context ends first, the callers still waiting try again
// under their own.
func (c *CachedStatisticsSource) get(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	for {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		ch := c.group.DoChan(key, func() (interface{}, error) {
			if v, ok := c.cache.Get(key); ok {
				return v, nil
			}
			v, err := fn(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fillAbandoned{err: err}
				}
				return nil, err
			}
			c.cache.Add(key, v)
			return v, nil
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-ch:
			if abandoned, ok := r.Err.(fillAbandoned); ok {
				if ctx.Err() != nil {
					return nil, abandoned.err
				}
				continue
			}
			return r.Val, r.Err
		}
	}
}

// TermVector retrieves the term vector for a document. The returned vector is shared and must not be modified.
func (c *CachedStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	v, err := c.get(ctx, "v\x00"+document, func(ctx context.Context) (interface{}, error) {
		return c.StatisticsSource.TermVector(ctx, document)
	})
	if err != nil {
		return nil, err
	}
	return v.(TermVector), nil
}

// DocumentLength is the number of terms in a document.
func (c *CachedStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	v, err := c.get(ctx, "l\x00"+document, func(ctx context.Context) (interface{}, error) {
		return c.StatisticsSource.DocumentLength(ctx, document)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// CollectionFrequency is the number of times a term occurs in the collection.
func (c *CachedStatisticsSource) CollectionFrequency(ctx context.Context, term string) (uint64, error) {
	v, err := c.get(ctx, "c\x00"+term, func(ctx context.Context) (interface{}, error) {
		return c.StatisticsSource.CollectionFrequency(ctx, term)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// TotalCollectionTerms is the number of terms in the collection.
func (c *CachedStatisticsSource) TotalCollectionTerms(ctx context.Context) (uint64, error) {
	v, err := c.get(ctx, "total", func(ctx context.Context) (interface{}, error) {
		return c.StatisticsSource.TotalCollectionTerms(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}

// Len is the number of cached entries.
func (c *CachedStatisticsSource) Len() int {
	return c.cache.Len()
}
