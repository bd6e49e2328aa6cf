// Package metrics defines the Prometheus collectors of an expansion run. Runs are batch jobs, so the metrics are
// written to a file in the text exposition format (suitable for the node exporter's textfile collector) rather than
// scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors of an expansion run.
type Metrics struct {
	TopicsTotal              *prometheus.CounterVec
	FeedbackDocumentsTotal   prometheus.Counter
	MissingDocumentsTotal    prometheus.Counter
	SerialisationErrorsTotal prometheus.Counter
	ExpansionTermsCount      prometheus.Histogram
	ExpansionDuration        prometheus.Histogram
	Registry                 *prometheus.Registry
}

// New creates all collectors and registers them with a fresh registry. Runs may carry constant labels, such as the
// run tag and batch identifier.
func New(labels prometheus.Labels) *Metrics {
	m := &Metrics{
		TopicsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "prf_topics_total",
				Help:        "Total number of topics processed by outcome (expanded, no_feedback, failed, serialisation_error).",
				ConstLabels: labels,
			},
			[]string{"outcome"},
		),
		FeedbackDocumentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "prf_feedback_documents_total",
				Help:        "Total number of feedback documents used to estimate relevance models.",
				ConstLabels: labels,
			},
		),
		MissingDocumentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "prf_missing_documents_total",
				Help:        "Total number of feedback documents skipped because they could not be resolved.",
				ConstLabels: labels,
			},
		),
		SerialisationErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "prf_serialisation_errors_total",
				Help:        "Total number of output lines skipped because a weight could not be written.",
				ConstLabels: labels,
			},
		),
		ExpansionTermsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "prf_expansion_terms",
				Help:        "Number of terms in each expanded query.",
				Buckets:     []float64{0, 1, 5, 10, 20, 50, 100},
				ConstLabels: labels,
			},
		),
		ExpansionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "prf_expansion_duration_seconds",
				Help:        "Time taken to expand a single topic in seconds.",
				Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
				ConstLabels: labels,
			},
		),
		Registry: prometheus.NewRegistry(),
	}

	m.Registry.MustRegister(
		m.TopicsTotal,
		m.FeedbackDocumentsTotal,
		m.MissingDocumentsTotal,
		m.SerialisationErrorsTotal,
		m.ExpansionTermsCount,
		m.ExpansionDuration,
	)

	return m
}

// WriteToTextfile writes the current value of every collector to the file at path.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
