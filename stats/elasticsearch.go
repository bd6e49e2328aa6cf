package stats

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/olivere/elastic/v7"
	"github.com/pkg/errors"
)

// ElasticsearchStatisticsSource is a way of gathering statistics for a collection using the term vectors API of
// Elasticsearch. Terms handed to the source are assumed to be analysed already, so lookups of individual terms use the
// keyword analyser.
type ElasticsearchStatisticsSource struct {
	client *elastic.Client
	hosts  []string
	index  string
	field  string
	sniff  bool

	mu              sync.Mutex
	fieldStatistics *elastic.FieldStatistics
}

// ElasticsearchHosts sets the hosts for the Elasticsearch client.
func ElasticsearchHosts(hosts ...string) func(*ElasticsearchStatisticsSource) {
	return func(es *ElasticsearchStatisticsSource) {
		es.hosts = hosts
	}
}

// ElasticsearchClient uses an existing client instead of creating one from hosts.
func ElasticsearchClient(client *elastic.Client) func(*ElasticsearchStatisticsSource) {
	return func(es *ElasticsearchStatisticsSource) {
		es.client = client
	}
}

// ElasticsearchIndex sets the index for the Elasticsearch client.
func ElasticsearchIndex(index string) func(*ElasticsearchStatisticsSource) {
	return func(es *ElasticsearchStatisticsSource) {
		es.index = index
	}
}

// ElasticsearchField sets the field statistics are computed over.
func ElasticsearchField(field string) func(*ElasticsearchStatisticsSource) {
	return func(es *ElasticsearchStatisticsSource) {
		es.field = field
	}
}

// ElasticsearchSniff enables cluster sniffing.
func ElasticsearchSniff(sniff bool) func(*ElasticsearchStatisticsSource) {
	return func(es *ElasticsearchStatisticsSource) {
		es.sniff = sniff
	}
}

// NewElasticsearchStatisticsSource creates a new ElasticsearchStatisticsSource using functional options.
func NewElasticsearchStatisticsSource(options ...func(*ElasticsearchStatisticsSource)) (*ElasticsearchStatisticsSource, error) {
	es := &ElasticsearchStatisticsSource{
		hosts: []string{"http://localhost:9200"},
		field: "contents",
	}
	for _, option := range options {
		option(es)
	}

	if len(es.index) == 0 {
		return nil, errors.New("an Elasticsearch index must be specified")
	}

	if es.client == nil {
		var err error
		es.client, err = elastic.NewClient(
			elastic.SetURL(es.hosts...),
			elastic.SetSniff(es.sniff),
			elastic.SetHealthcheck(false))
		if err != nil {
			return nil, errors.Wrap(err, "could not create Elasticsearch client")
		}
	}
	return es, nil
}

// Close stops the background processes of the client.
func (es *ElasticsearchStatisticsSource) Close() error {
	es.client.Stop()
	return nil
}

func (es *ElasticsearchStatisticsSource) termVector(ctx context.Context, document string) (elastic.TermVectorsFieldInfo, error) {
	resp, err := es.client.TermVectors(es.index).
		Id(document).
		Fields(es.field).
		FieldStatistics(false).
		TermStatistics(true).
		Offsets(false).
		Positions(false).
		Payloads(false).
		Do(ctx)
	if elastic.IsNotFound(err) {
		return elastic.TermVectorsFieldInfo{}, missingDocument(document)
	}
	if err != nil {
		return elastic.TermVectorsFieldInfo{}, errors.Wrapf(err, "term vector for document %q", document)
	}
	if !resp.Found {
		return elastic.TermVectorsFieldInfo{}, missingDocument(document)
	}
	return resp.TermVectors[es.field], nil
}

// TermVector retrieves the term vector for a document.
func (es *ElasticsearchStatisticsSource) TermVector(ctx context.Context, document string) (TermVector, error) {
	info, err := es.termVector(ctx, document)
	if err != nil {
		return nil, err
	}
	tv := make(TermVector, 0, len(info.Terms))
	for term, vec := range info.Terms {
		tv = append(tv, TermVectorTerm{
			Term:                term,
			TermFrequency:       uint64(vec.TermFreq),
			DocumentFrequency:   uint64(vec.DocFreq),
			CollectionFrequency: uint64(vec.Ttf),
		})
	}
	tv.Sort()
	return tv, nil
}

// TermFrequency is the term frequency in the field of a document.
func (es *ElasticsearchStatisticsSource) TermFrequency(ctx context.Context, term, document string) (uint64, error) {
	info, err := es.termVector(ctx, document)
	if err != nil {
		return 0, err
	}
	return uint64(info.Terms[term].TermFreq), nil
}

// DocumentLength is the number of indexed terms in the field of a document.
func (es *ElasticsearchStatisticsSource) DocumentLength(ctx context.Context, document string) (uint64, error) {
	info, err := es.termVector(ctx, document)
	if err != nil {
		return 0, err
	}
	var l uint64
	for _, vec := range info.Terms {
		l += uint64(vec.TermFreq)
	}
	return l, nil
}

// termStatistics issues an artificial document containing only the term to get its collection statistics.
func (es *ElasticsearchStatisticsSource) termStatistics(ctx context.Context, term string) (elastic.TermsInfo, error) {
	resp, err := es.client.TermVectors(es.index).
		Doc(map[string]string{es.field: term}).
		Fields(es.field).
		FieldStatistics(false).
		TermStatistics(true).
		Offsets(false).
		Positions(false).
		Payloads(false).
		PerFieldAnalyzer(map[string]string{es.field: "keyword"}).
		Do(ctx)
	if err != nil {
		return elastic.TermsInfo{}, errors.Wrapf(err, "term statistics for %q", term)
	}
	info, ok := resp.TermVectors[es.field].Terms[term]
	if !ok || info.Ttf == 0 {
		return elastic.TermsInfo{}, unknownTerm(term)
	}
	return info, nil
}

// CollectionFrequency is the total term frequency of a term in the field.
func (es *ElasticsearchStatisticsSource) CollectionFrequency(ctx context.Context, term string) (uint64, error) {
	info, err := es.termStatistics(ctx, term)
	if err != nil {
		return 0, err
	}
	return uint64(info.Ttf), nil
}

// DocumentFrequency is the document frequency (the number of documents containing the current term).
func (es *ElasticsearchStatisticsSource) DocumentFrequency(ctx context.Context, term string) (uint64, error) {
	info, err := es.termStatistics(ctx, term)
	if err != nil {
		return 0, err
	}
	return uint64(info.DocFreq), nil
}

// collectionStatistics requests the field statistics using an artificial document of a random term. Only a successful
// response is kept, so a failed request is retried by the next caller.
func (es *ElasticsearchStatisticsSource) collectionStatistics(ctx context.Context) (elastic.FieldStatistics, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.fieldStatistics != nil {
		return *es.fieldStatistics, nil
	}

	resp, err := es.client.TermVectors(es.index).
		Doc(map[string]string{es.field: uuid.New().String()}).
		Fields(es.field).
		FieldStatistics(true).
		TermStatistics(false).
		Offsets(false).
		Positions(false).
		Payloads(false).
		Do(ctx)
	if err != nil {
		return elastic.FieldStatistics{}, errors.Wrap(err, "field statistics")
	}
	fs := resp.TermVectors[es.field].FieldStatistics
	es.fieldStatistics = &fs
	return fs, nil
}

// TotalCollectionTerms is the sum of total term frequencies of the field.
func (es *ElasticsearchStatisticsSource) TotalCollectionTerms(ctx context.Context) (uint64, error) {
	fs, err := es.collectionStatistics(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(fs.SumTtf), nil
}

// DocumentCount is the number of documents with the field.
func (es *ElasticsearchStatisticsSource) DocumentCount(ctx context.Context) (uint64, error) {
	fs, err := es.collectionStatistics(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(fs.DocCount), nil
}
