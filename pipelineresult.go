package prf

import (
	"time"

	"github.com/hscells/prf/query"
)

// ResultType is the outcome of expanding one topic.
type ResultType uint8

const (
	// Expanded topics were interpolated with a relevance model.
	Expanded ResultType = iota
	// NoFeedback topics had no usable feedback documents and are written unexpanded.
	NoFeedback
	// Failed topics could not be expanded and are not written.
	Failed
	// Unserialisable topics had a weight that could not be written and are not written.
	Unserialisable
)

func (t ResultType) String() string {
	switch t {
	case Expanded:
		return "expanded"
	case NoFeedback:
		return "no_feedback"
	case Failed:
		return "failed"
	case Unserialisable:
		return "serialisation_error"
	}
	return "unknown"
}

// PipelineResult is the expansion of a single topic.
type PipelineResult struct {
	Topic string
	Type  ResultType
	// Query is the expanded query (or the normalised original query when no feedback was available).
	Query query.Model
	// Line is the serialised query; it is empty unless the topic is written.
	Line string

	FeedbackDocuments int
	MissingDocuments  int
	OriginalTerms     int
	Elapsed           time.Duration

	Error error
}

// Written reports whether the result produces a line of output.
func (r PipelineResult) Written() bool {
	return r.Type == Expanded || r.Type == NoFeedback
}

// Summary describes a completed expansion run.
type Summary struct {
	BatchID string
	Topics  int
	// Outcomes counts the topics of each result type.
	Outcomes         map[ResultType]int
	MissingDocuments int
	// Measurements are the per-topic measurements rendered by each measurement formatter of the pipeline.
	Measurements []string
	Elapsed      time.Duration
}
