// Package prf provides a pipeline for expanding queries with pseudo-relevance feedback (RM3).
package prf

import (
	"bufio"
	"context"
	"io"
	"os"
	"runtime"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/hscells/prf/feedback"
	"github.com/hscells/prf/metrics"
	"github.com/hscells/prf/output"
	"github.com/hscells/prf/preprocess"
	"github.com/hscells/prf/query"
	"github.com/hscells/prf/retrieval"
	"github.com/hscells/prf/stats"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
)

// Pipeline contains everything needed to expand a batch of topics.
type Pipeline struct {
	StatisticsSource      stats.StatisticsSource
	Config                Config
	Analyser              preprocess.Analyser
	Formatter             output.LineFormatter
	MeasurementFormatters []output.MeasurementFormatter
	Logger                *zap.SugaredLogger
	Metrics               *metrics.Metrics
	ShowProgress          bool
}

type progress bool

// Logger sets the logger of the pipeline.
func Logger(logger *zap.SugaredLogger) func() interface{} {
	return func() interface{} {
		return logger
	}
}

// Metrics records the outcome of every topic in m.
func Metrics(m *metrics.Metrics) func() interface{} {
	return func() interface{} {
		return m
	}
}

// Formatter sets how expanded queries are written.
func Formatter(formatter output.LineFormatter) func() interface{} {
	return func() interface{} {
		return formatter
	}
}

// MeasurementOutput adds formatters for the per-topic measurements of a run.
func MeasurementOutput(formatter ...output.MeasurementFormatter) func() interface{} {
	return func() interface{} {
		return formatter
	}
}

// Progress shows a progress bar over the topics on stderr.
func Progress(show bool) func() interface{} {
	return func() interface{} {
		return progress(show)
	}
}

// Analyser sets the analyser applied to topic text, overriding the analyser named in the configuration.
func Analyser(analyser preprocess.Analyser) func() interface{} {
	return func() interface{} {
		return analyser
	}
}

// NewPipeline creates a new expansion pipeline. The statistics source and configuration are required. Additional
// components are provided via the optional functional arguments.
func NewPipeline(ss stats.StatisticsSource, config Config, components ...func() interface{}) Pipeline {
	p := Pipeline{
		StatisticsSource: ss,
		Config:           config,
	}

	for _, component := range components {
		val := component()
		switch v := val.(type) {
		case *zap.SugaredLogger:
			p.Logger = v
		case *metrics.Metrics:
			p.Metrics = v
		case output.LineFormatter:
			p.Formatter = v
		case []output.MeasurementFormatter:
			p.MeasurementFormatters = v
		case progress:
			p.ShowProgress = bool(v)
		case preprocess.Analyser:
			p.Analyser = v
		}
	}

	return p
}

// Execute expands every topic using the feedback documents ranked for it in run and writes one line per topic to w,
// in the order of topics. Topics are expanded concurrently. Errors of a single topic are logged and never stop the
// others; the topic is then either written unexpanded (no feedback) or left out. An invalid configuration or a
// cancelled context stops the batch, and nothing is written.
func (p Pipeline) Execute(ctx context.Context, topics query.Topics, run retrieval.Run, w io.Writer) (Summary, error) {
	start := time.Now()

	if err := p.Config.Validate(); err != nil {
		return Summary{}, err
	}
	if p.StatisticsSource == nil {
		return Summary{}, errors.New("no statistics source configured")
	}
	weighting, err := feedback.NewDocumentWeighting(p.Config.Weighting)
	if err != nil {
		return Summary{}, err
	}
	analyser := p.Analyser
	if analyser == nil {
		analyser, _ = preprocess.NewNamedAnalyser(p.Config.Analyser)
	}
	source := p.StatisticsSource
	if p.Config.Timeout > 0 {
		source = stats.Timeout(source, p.Config.Timeout)
	}
	parallelism := p.Config.Parallelism
	if parallelism == 0 {
		parallelism = runtime.NumCPU()
	}

	batch := uuid.New().String()
	log := p.logger().With("batch", batch, "runtag", p.Config.RunTag)
	log.Infow("starting expansion",
		"topics", len(topics),
		"fbDocs", p.Config.FeedbackDocuments,
		"fbTerms", p.Config.FeedbackTerms,
		"originalQueryWeight", p.Config.OriginalQueryWeight,
		"mu", p.Config.Mu,
		"weighting", weighting.Name(),
		"parallelism", parallelism)

	options := []func(*feedback.RelevanceModelBuilder){
		feedback.RelevanceModelMu(p.Config.Mu),
		feedback.RelevanceModelFeedbackDocuments(p.Config.FeedbackDocuments),
		feedback.RelevanceModelWeighting(weighting),
	}
	if p.Config.FilterTerms {
		options = append(options, feedback.RelevanceModelTermFilter(feedback.AnseriniTermFilter))
	}

	var bar *pb.ProgressBar
	if p.ShowProgress {
		bar = pb.New(len(topics))
		bar.Output = os.Stderr
		bar.Start()
	}

	// Each topic owns one slot, so results come out in topic order whatever order they complete in.
	results := make([]PipelineResult, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, topic := range topics {
		if gctx.Err() != nil {
			break
		}
		i, topic := i, topic
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			q := NewPipelineQuery(topic, p.Config.TopicField, analyser, run, p.Config.FeedbackDocuments)
			r, err := p.expand(gctx, log, source, options, q)
			if err != nil {
				return err
			}
			results[i] = r
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	err = g.Wait()
	if bar != nil {
		bar.Finish()
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Warnw("expansion cancelled, discarding results", "error", err)
		return Summary{}, err
	}

	summary := Summary{
		BatchID:  batch,
		Topics:   len(topics),
		Outcomes: make(map[ResultType]int),
	}
	bw := bufio.NewWriter(w)
	for _, r := range results {
		summary.Outcomes[r.Type]++
		summary.MissingDocuments += r.MissingDocuments
		if !r.Written() {
			continue
		}
		if _, err := bw.WriteString(r.Line + "\n"); err != nil {
			return summary, errors.Wrap(err, "writing expanded queries")
		}
	}
	if err := bw.Flush(); err != nil {
		return summary, errors.Wrap(err, "writing expanded queries")
	}

	summary.Measurements, err = p.measure(results)
	if err != nil {
		return summary, err
	}
	summary.Elapsed = time.Since(start)

	log.Infow("finished expansion",
		"expanded", summary.Outcomes[Expanded],
		"unexpanded", summary.Outcomes[NoFeedback],
		"failed", summary.Outcomes[Failed]+summary.Outcomes[Unserialisable],
		"missingDocuments", summary.MissingDocuments,
		"elapsed", summary.Elapsed)
	return summary, nil
}

// expand builds the expanded query of a single topic. The only error returned is the cancellation of ctx; every other
// failure is recorded in the result.
func (p Pipeline) expand(ctx context.Context, log *zap.SugaredLogger, source stats.StatisticsSource, options []func(*feedback.RelevanceModelBuilder), q PipelineQuery) (PipelineResult, error) {
	start := time.Now()
	log = log.With("topic", q.Topic)

	r := PipelineResult{
		Topic:             q.Topic,
		FeedbackDocuments: len(q.Feedback),
		OriginalTerms:     len(q.Original),
	}
	if len(q.Text) == 0 {
		log.Warnw("topic has no text to expand", "field", p.Config.TopicField)
	}

	// The options are shared between goroutines, so the hook must not be appended in place.
	options = append(options[:len(options):len(options)], feedback.RelevanceModelMissingDocument(func(document string, err error) {
		r.MissingDocuments++
		if stats.IsMissingDocument(err) {
			log.Debugw("skipping missing feedback document", "document", document)
			return
		}
		log.Warnw("skipping feedback document", "document", document, "error", err)
	}))
	builder := feedback.NewRelevanceModelBuilder(source, options...)

	expanded, err := builder.BuildExpandedQuery(ctx, q.Original, q.Feedback, p.Config.FeedbackTerms, p.Config.OriginalQueryWeight)
	switch {
	case err == feedback.ErrNoFeedbackAvailable:
		r.Type = NoFeedback
		log.Warnw("no feedback available, writing original query", "documents", len(q.Feedback))
	case err != nil:
		if ctx.Err() != nil {
			return r, ctx.Err()
		}
		r.Type = Failed
		r.Error = err
		log.Errorw("could not expand topic", "error", err)
	}
	r.Query = expanded

	if r.Type != Failed {
		line, err := p.formatter()(q.Topic, expanded, p.Config.Precision)
		if err != nil {
			r.Type = Unserialisable
			r.Error = err
			log.Errorw("skipping topic", "error", err)
			log.Debug(goerrors.Wrap(err, 1).ErrorStack())
		} else {
			r.Line = line
		}
	}

	r.Elapsed = time.Since(start)
	p.record(r)
	return r, nil
}

func (p Pipeline) record(r PipelineResult) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.TopicsTotal.WithLabelValues(r.Type.String()).Inc()
	p.Metrics.FeedbackDocumentsTotal.Add(float64(r.FeedbackDocuments - r.MissingDocuments))
	p.Metrics.MissingDocumentsTotal.Add(float64(r.MissingDocuments))
	if r.Type == Unserialisable {
		p.Metrics.SerialisationErrorsTotal.Inc()
	}
	if r.Written() {
		p.Metrics.ExpansionTermsCount.Observe(float64(len(r.Query)))
	}
	p.Metrics.ExpansionDuration.Observe(r.Elapsed.Seconds())
}

// measure renders the per-topic measurements of a run with each measurement formatter.
func (p Pipeline) measure(results []PipelineResult) ([]string, error) {
	if len(p.MeasurementFormatters) == 0 {
		return nil, nil
	}

	headers := []string{"feedback_documents", "missing_documents", "original_terms", "expansion_terms", "elapsed_seconds"}
	topics := make([]string, len(results))
	data := make([][]float64, len(headers))
	for i := range data {
		data[i] = make([]float64, len(results))
	}
	for j, r := range results {
		topics[j] = r.Topic
		data[0][j] = float64(r.FeedbackDocuments)
		data[1][j] = float64(r.MissingDocuments)
		data[2][j] = float64(r.OriginalTerms)
		data[3][j] = float64(len(r.Query))
		data[4][j] = r.Elapsed.Seconds()
	}

	outputs := make([]string, len(p.MeasurementFormatters))
	for i, formatter := range p.MeasurementFormatters {
		var err error
		outputs[i], err = formatter(topics, headers, data)
		if err != nil {
			return nil, errors.Wrap(err, "formatting measurements")
		}
	}
	return outputs, nil
}

func (p Pipeline) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}

func (p Pipeline) formatter() output.LineFormatter {
	if p.Formatter == nil {
		return output.FormatLine
	}
	return p.Formatter
}
