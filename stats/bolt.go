package stats

import (
	"context"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

var (
	documentsBucket  = []byte("documents")
	termsBucket      = []byte("terms")
	collectionBucket = []byte("collection")

	totalTermsKey    = []byte("terms")
	documentCountKey = []byte("documents")
)

// documentRecord is how a document is stored in a bolt index.
type documentRecord struct {
	Length uint64            `cbor:"1,keyasint"`
	Terms  map[string]uint64 `cbor:"2,keyasint"`
}

// termRecord is how the collection statistics of a term are stored in a bolt index.
type termRecord struct {
	CollectionFrequency uint64 `cbor:"1,keyasint"`
	DocumentFrequency   uint64 `cbor:"2,keyasint"`
}

// BoltStatisticsSource reads statistics from an index file written by WriteBoltIndex. The file is opened read-only, and
// bolt allows any number of concurrent read transactions, so one source can serve every worker of a batch. Close must
// be called once the batch is complete.
type BoltStatisticsSource struct {
	db *bolt.DB

	total uint64
	count uint64
}

// OpenBoltStatisticsSource opens an index file for reading.
func OpenBoltStatisticsSource(path string, timeout time.Duration) (*BoltStatisticsSource, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "index %s", path)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true, Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open index %s", path)
	}

	b := &BoltStatisticsSource{db: db}
	err = db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(collectionBucket)
		if c == nil {
			return errors.Errorf("index %s has no collection statistics", path)
		}
		if err := cbor.Unmarshal(c.Get(totalTermsKey), &b.total); err != nil {
			return errors.Wrap(err, "could not decode collection size")
		}
		if err := cbor.Unmarshal(c.Get(documentCountKey), &b.count); err != nil {
			return errors.Wrap(err, "could not decode document count")
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// Close releases the index file.
func (b *BoltStatisticsSource) Close() error {
	return b.db.Close()
}

func (b *BoltStatisticsSource) document(tx *bolt.Tx, document string) (documentRecord, error) {
	var rec documentRecord
	v := tx.Bucket(documentsBucket).Get([]byte(document))
	if v == nil {
		return rec, missingDocument(document)
	}
	if err := cbor.Unmarshal(v, &rec); err != nil {
		return rec, errors.Wrapf(err, "could not decode document %q", document)
	}
	return rec, nil
}

func (b *BoltStatisticsSource) term(tx *bolt.Tx, term string) (termRecord, error) {
	var rec termRecord
	v := tx.Bucket(termsBucket).Get([]byte(term))
	if v == nil {
		return rec, unknownTerm(term)
	}
	if err := cbor.Unmarshal(v, &rec); err != nil {
		return rec, errors.Wrapf(err, "could not decode term %q", term)
	}
	return rec, nil
}

// TermVector is every distinct term of a document in lexicographic order.
func (b *BoltStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	var tv TermVector
	err := b.db.View(func(tx *bolt.Tx) error {
		doc, err := b.document(tx, document)
		if err != nil {
			return err
		}
		tv = make(TermVector, 0, len(doc.Terms))
		for term, tf := range doc.Terms {
			rec, err := b.term(tx, term)
			if err != nil {
				return errors.Wrapf(err, "document %q is inconsistent with the term dictionary", document)
			}
			tv = append(tv, TermVectorTerm{
				Term:                term,
				TermFrequency:       tf,
				DocumentFrequency:   rec.DocumentFrequency,
				CollectionFrequency: rec.CollectionFrequency,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	tv.Sort()
	return tv, nil
}

// TermFrequency is the number of times a term occurs in a document.
func (b *BoltStatisticsSource) TermFrequency(ctx context.Context, term, document string) (uint64, error) {
	var tf uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		doc, err := b.document(tx, document)
		if err != nil {
			return err
		}
		tf = doc.Terms[term]
		return nil
	})
	return tf, err
}

// DocumentLength is the number of terms in a document.
func (b *BoltStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	var l uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		doc, err := b.document(tx, document)
		if err != nil {
			return err
		}
		l = doc.Length
		return nil
	})
	return l, err
}

// CollectionFrequency is the number of times a term occurs in the collection.
func (b *BoltStatisticsSource) CollectionFrequency(ctx context.Context, term string) (uint64, error) {
	var cf uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		rec, err := b.term(tx, term)
		cf = rec.CollectionFrequency
		return err
	})
	return cf, err
}

// DocumentFrequency is the number of documents containing a term.
func (b *BoltStatisticsSource) DocumentFrequency(ctx context.Context, term string) (uint64, error) {
	var df uint64
	err := b.db.View(func(tx *bolt.Tx) error {
		rec, err := b.term(tx, term)
		df = rec.DocumentFrequency
		return err
	})
	return df, err
}

// TotalCollectionTerms is the number of terms in the collection.
func (b *BoltStatisticsSource) TotalCollectionTerms(ctx context.Context) (uint64, error) {
	return b.total, nil
}

// DocumentCount is the number of documents in the collection.
func (b *BoltStatisticsSource) DocumentCount(ctx context.Context) (uint64, error) {
	return b.count, nil
}

// WriteBoltIndex persists the statistics of an in-memory collection to an index file that can be read with
// OpenBoltStatisticsSource. An existing file at path is overwritten.
func WriteBoltIndex(path string, m *MemoryStatisticsSource) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not replace index %s", path)
	}

	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return errors.Wrapf(err, "could not create index %s", path)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		docs, err := tx.CreateBucketIfNotExists(documentsBucket)
		if err != nil {
			return err
		}
		terms, err := tx.CreateBucketIfNotExists(termsBucket)
		if err != nil {
			return err
		}
		coll, err := tx.CreateBucketIfNotExists(collectionBucket)
		if err != nil {
			return err
		}

		for id, tf := range m.documents {
			v, err := cbor.Marshal(documentRecord{Length: m.lengths[id], Terms: tf})
			if err != nil {
				return errors.Wrapf(err, "could not encode document %q", id)
			}
			if err := docs.Put([]byte(id), v); err != nil {
				return err
			}
		}

		for term, cf := range m.collection {
			v, err := cbor.Marshal(termRecord{CollectionFrequency: cf, DocumentFrequency: m.df[term]})
			if err != nil {
				return errors.Wrapf(err, "could not encode term %q", term)
			}
			if err := terms.Put([]byte(term), v); err != nil {
				return err
			}
		}

		total, err := cbor.Marshal(m.total)
		if err != nil {
			return err
		}
		if err := coll.Put(totalTermsKey, total); err != nil {
			return err
		}
		count, err := cbor.Marshal(uint64(len(m.documents)))
		if err != nil {
			return err
		}
		return coll.Put(documentCountKey, count)
	})
}
