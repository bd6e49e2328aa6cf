package stats_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hscells/prf/stats"
	"github.com/olivere/elastic/v7"
)

// newTermVectorsServer answers term vector requests for an index named "test" from an in-memory collection, the way
// Elasticsearch does for stored and artificial documents.
func newTermVectorsServer(t *testing.T, m *stats.MemoryStatisticsSource) *httptest.Server {
	return httptest.NewServer(termVectorsHandler(t, m))
}

func termVectorsHandler(t *testing.T, m *stats.MemoryStatisticsSource) http.HandlerFunc {
	ctx := context.Background()
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "test" || parts[1] != "_termvectors" {
			http.NotFound(w, r)
			return
		}

		total, _ := m.TotalCollectionTerms(ctx)
		count, _ := m.DocumentCount(ctx)
		terms := make(map[string]interface{})
		resp := map[string]interface{}{
			"_index":   "test",
			"_version": 1,
			"found":    true,
			"took":     1,
		}
		resp["term_vectors"] = map[string]interface{}{
			"contents": map[string]interface{}{
				"field_statistics": map[string]interface{}{
					"sum_doc_freq": total,
					"doc_count":    count,
					"sum_ttf":      total,
				},
				"terms": terms,
			},
		}

		if len(parts) == 3 {
			resp["_id"] = parts[2]
			tv, err := m.TermVector(ctx, parts[2])
			if err != nil {
				resp["found"] = false
				delete(resp, "term_vectors")
			}
			for _, term := range tv {
				terms[term.Term] = map[string]interface{}{
					"term_freq": term.TermFrequency,
					"doc_freq":  term.DocumentFrequency,
					"ttf":       term.CollectionFrequency,
				}
			}
		} else {
			var body struct {
				Doc map[string]string `json:"doc"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Error(err)
			}
			for _, term := range strings.Fields(body.Doc["contents"]) {
				info := map[string]interface{}{"term_freq": 1}
				if cf, err := m.CollectionFrequency(ctx, term); err == nil {
					df, _ := m.DocumentFrequency(ctx, term)
					info["ttf"] = cf
					info["doc_freq"] = df
				}
				terms[term] = info
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Error(err)
		}
	}
}

func TestElasticsearchStatisticsSource(t *testing.T) {
	ctx := context.Background()
	m := brownFox()
	server := newTermVectorsServer(t, m)
	defer server.Close()

	es, err := stats.NewElasticsearchStatisticsSource(
		stats.ElasticsearchHosts(server.URL),
		stats.ElasticsearchIndex("test"),
		stats.ElasticsearchField("contents"))
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()

	expected, _ := m.TermVector(ctx, "D1")
	tv, err := es.TermVector(ctx, "D1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(expected, tv) {
		t.Fatalf("expected term vector %v, got %v", expected, tv)
	}

	l, err := es.DocumentLength(ctx, "D1")
	if err != nil {
		t.Fatal(err)
	}
	if l != 5 {
		t.Fatalf("expected length 5, got %d", l)
	}

	tf, err := es.TermFrequency(ctx, "brown", "D2")
	if err != nil {
		t.Fatal(err)
	}
	if tf != 1 {
		t.Fatalf("expected tf 1, got %d", tf)
	}

	cf, err := es.CollectionFrequency(ctx, "the")
	if err != nil {
		t.Fatal(err)
	}
	df, err := es.DocumentFrequency(ctx, "the")
	if err != nil {
		t.Fatal(err)
	}
	if cf != 2 || df != 2 {
		t.Fatalf("expected cf = df = 2, got cf=%d df=%d", cf, df)
	}

	total, err := es.TotalCollectionTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	n, err := es.DocumentCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 10 || n != 2 {
		t.Fatalf("expected 10 terms in 2 documents, got %d in %d", total, n)
	}

	if _, err := es.TermVector(ctx, "D3"); !stats.IsMissingDocument(err) {
		t.Fatalf("expected a missing document, got %v", err)
	}
	if _, err := es.CollectionFrequency(ctx, "zebra"); !stats.IsUnknownTerm(err) {
		t.Fatalf("expected an unknown term, got %v", err)
	}

	// The language model over Elasticsearch matches the one over the collection itself.
	a, err := stats.NewDocumentLanguageModel(ctx, m, "D2", 1000)
	if err != nil {
		t.Fatal(err)
	}
	b, err := stats.NewDocumentLanguageModel(ctx, es, "D2", 1000)
	if err != nil {
		t.Fatal(err)
	}
	for _, term := range a.Terms() {
		pa, _ := a.Observed(term)
		pb, _ := b.Observed(term)
		if pa != pb {
			t.Fatalf("%s: expected %v, got %v", term, pa, pb)
		}
	}
}

func TestNewElasticsearchStatisticsSourceRequiresIndex(t *testing.T) {
	if _, err := stats.NewElasticsearchStatisticsSource(stats.ElasticsearchHosts("http://localhost:9200")); err == nil {
		t.Fatal("expected an error without an index")
	}
}

func TestElasticsearchFieldStatisticsRetry(t *testing.T) {
	ctx := context.Background()
	handler := termVectorsHandler(t, brownFox())

	var artificial int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Requests without a document id are artificial documents.
		if strings.HasSuffix(strings.TrimRight(r.URL.Path, "/"), "_termvectors") {
			if atomic.AddInt32(&artificial, 1) == 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": {"type": "exception", "reason": "unavailable"}, "status": 500}`))
				return
			}
		}
		handler(w, r)
	}))
	defer server.Close()

	client, err := elastic.NewClient(elastic.SetURL(server.URL), elastic.SetSniff(false), elastic.SetHealthcheck(false))
	if err != nil {
		t.Fatal(err)
	}
	es, err := stats.NewElasticsearchStatisticsSource(stats.ElasticsearchClient(client), stats.ElasticsearchIndex("test"))
	if err != nil {
		t.Fatal(err)
	}
	defer es.Close()

	if _, err := es.TotalCollectionTerms(ctx); err == nil {
		t.Fatal("expected the first request to fail")
	}
	total, err := es.TotalCollectionTerms(ctx)
	if err != nil {
		t.Fatalf("expected the field statistics to be requested again, got %v", err)
	}
	if total != 10 {
		t.Fatalf("expected 10 terms, got %d", total)
	}
	if n, err := es.DocumentCount(ctx); err != nil || n != 2 {
		t.Fatalf("expected 2 documents, got %d (%v)", n, err)
	}
	if n := atomic.LoadInt32(&artificial); n != 2 {
		t.Fatalf("expected successful field statistics to be kept, got %d requests", n)
	}
}
