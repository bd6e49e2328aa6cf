// Package retrieval reads existing ranked runs and selects the feedback documents of each topic from them.
package retrieval

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/hscells/trecresults"
	"github.com/pkg/errors"
)

// ResultsHandler is the interface for operations on result lists.
type ResultsHandler interface {
	Handle(list *trecresults.ResultList) error
}

// FeedbackDocument is a document of an initial ranking used as evidence of relevance, with its original score.
type FeedbackDocument struct {
	ID    string
	Score float64
}

// FeedbackDocuments are the top documents of a ranking in ranked order.
type FeedbackDocuments []FeedbackDocument

// Run maps a topic identifier to its ranked result list.
type Run map[string]trecresults.ResultList

// ReadRun parses a TREC run (`topic Q0 docid rank score tag` per line). The results of each topic keep the order of
// the file. Blank lines are ignored; any other malformed line is an error.
func ReadRun(r io.Reader) (Run, error) {
	run := make(Run)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for s.Scan() {
		n++
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 {
			continue
		}
		result, err := trecresults.ResultFromLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse run: line %d", n)
		}
		run[result.Topic] = append(run[result.Topic], result)
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read run")
	}
	return run, nil
}

// LoadRun parses the TREC run file at path.
func LoadRun(path string) (Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRun(f)
}

// Handle applies each handler to the result list of every topic.
func (r Run) Handle(handlers ...ResultsHandler) error {
	for topic, list := range r {
		for _, h := range handlers {
			if err := h.Handle(&list); err != nil {
				return errors.Wrapf(err, "topic %s", topic)
			}
		}
		r[topic] = list
	}
	return nil
}

// FeedbackDocuments are the first n documents ranked for a topic, in run order. A topic without results has no
// feedback documents.
func (r Run) FeedbackDocuments(topic string, n int) FeedbackDocuments {
	list := r[topic]
	if n > len(list) {
		n = len(list)
	}
	if n < 0 {
		n = 0
	}
	docs := make(FeedbackDocuments, 0, n)
	for _, result := range list[:n] {
		docs = append(docs, FeedbackDocument{ID: result.DocId, Score: result.Score})
	}
	return docs
}

// Scores are the original scores of the documents.
func (d FeedbackDocuments) Scores() []float64 {
	scores := make([]float64, len(d))
	for i, doc := range d {
		scores[i] = doc.Score
	}
	return scores
}
