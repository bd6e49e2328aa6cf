package stats

import (
	"context"
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/peterbourgon/diskv"
	"github.com/zeebo/blake3"
)

// BlockTransform determines how diskv should partition folders. The first depth blocks of blockSize characters of a
// key become nested folders.
func BlockTransform(blockSize, depth int) func(string) []string {
	return func(s string) []string {
		sliceSize := len(s) / blockSize
		if sliceSize > depth {
			sliceSize = depth
		}
		pathSlice := make([]string, sliceSize)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

// DiskCachedStatisticsSource persists the per-document statistics of a slow or remote source (term vectors and
// document lengths) on disk, so repeated experiments over the same run do not hit the source again.
type DiskCachedStatisticsSource struct {
	StatisticsSource
	d *diskv.Diskv
}

// NewDiskCachedStatisticsSource wraps a source with an on-disk cache rooted at dir.
func NewDiskCachedStatisticsSource(source StatisticsSource, dir string) *DiskCachedStatisticsSource {
	return &DiskCachedStatisticsSource{
		StatisticsSource: source,
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    BlockTransform(2, 2),
			CacheSizeMax: 4096 * 1024,
			Compression:  diskv.NewGzipCompression(),
		}),
	}
}

func cacheKey(kind, document string) string {
	sum := blake3.Sum256([]byte(kind + "\x00" + document))
	return hex.EncodeToString(sum[:])
}

func (c *DiskCachedStatisticsSource) read(key string, v interface{}) bool {
	b, err := c.d.Read(key)
	if err != nil {
		return false
	}
	return cbor.Unmarshal(b, v) == nil
}

// write stores a value; a failed write only costs a future cache miss.
func (c *DiskCachedStatisticsSource) write(key string, v interface{}) {
	b, err := cbor.Marshal(v)
	if err != nil {
		return
	}
	_ = c.d.Write(key, b)
}

// TermVector retrieves the term vector for a document.
func (c *DiskCachedStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	key := cacheKey("tv", document)
	var tv TermVector
	if c.read(key, &tv) {
		return tv, nil
	}
	tv, err := c.StatisticsSource.TermVector(ctx, document)
	if err != nil {
		return nil, err
	}
	c.write(key, tv)
	return tv, nil
}

// DocumentLength is the number of terms in a document.
func (c *DiskCachedStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	key := cacheKey("len", document)
	var l uint64
	if c.read(key, &l) {
		return l, nil
	}
	l, err := c.StatisticsSource.DocumentLength(ctx, document)
	if err != nil {
		return 0, err
	}
	c.write(key, l)
	return l, nil
}

// Erase removes every cached entry.
func (c *DiskCachedStatisticsSource) Erase() error {
	return c.d.EraseAll()
}
