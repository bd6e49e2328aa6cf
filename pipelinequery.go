package prf

import (
	"github.com/hscells/prf/preprocess"
	"github.com/hscells/prf/query"
	"github.com/hscells/prf/retrieval"
)

// PipelineQuery stores information about a topic before it is expanded: the text of the selected field, the original
// query model built from it and the feedback documents taken from the run.
type PipelineQuery struct {
	Topic    string
	Text     string
	Original query.Model
	Feedback retrieval.FeedbackDocuments
}

// NewPipelineQuery prepares a topic for expansion. A topic without the field has an empty original query.
func NewPipelineQuery(topic query.Topic, field string, analyser preprocess.Analyser, run retrieval.Run, fbDocs int) PipelineQuery {
	text := topic.Fields[field]
	return PipelineQuery{
		Topic:    topic.ID,
		Text:     text,
		Original: query.FromTerms(analyser.Analyse(text)),
		Feedback: run.FeedbackDocuments(topic.ID, fbDocs),
	}
}
