package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/hscells/prf"
	"github.com/hscells/prf/cmd"
	"github.com/hscells/prf/metrics"
	"github.com/hscells/prf/output"
	"github.com/hscells/prf/query"
	"github.com/hscells/prf/retrieval"
	"github.com/hscells/prf/stats"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	name    = "rm3expand"
	version = "18.Oct.2026"
)

type args struct {
	Topics      []string `help:"Paths to topic files (or directories, for keyword topics)" arg:"-t,separate,required"`
	TopicFormat string   `help:"Format of the topic files (jsonl, keyword, trec, tsv)" arg:"--topic-format"`
	Run         string   `help:"Path to the initial run (TREC format)" arg:"-r,required"`
	Output      string   `help:"Path to write the expanded queries to (default stdout)" arg:"-o"`
	Format      string   `help:"Output format (line, cqr)" arg:"-f"`
	Config      string   `help:"Path to a .properties or .yaml configuration file" arg:"-c"`

	Index              string   `help:"Path to a bolt index built with prfindex" arg:"-i"`
	ElasticsearchHosts []string `help:"Elasticsearch hosts to read statistics from instead of an index" arg:"--es-hosts,separate"`
	ElasticsearchIndex string   `help:"Elasticsearch index" arg:"--es-index"`
	ElasticsearchField string   `help:"Elasticsearch field" arg:"--es-field"`
	ElasticsearchSniff bool     `help:"Discover the other nodes of the Elasticsearch cluster" arg:"--es-sniff"`
	CacheSize          int      `help:"Number of statistics kept in memory (0 disables the cache)" arg:"--cache-size"`
	CacheDir           string   `help:"Directory of a persistent term vector cache" arg:"--cache-dir"`

	FeedbackDocuments   *int           `help:"Number of feedback documents" arg:"--fbDocs"`
	FeedbackTerms       *int           `help:"Number of expansion terms" arg:"--fbTerms"`
	OriginalQueryWeight *float64       `help:"Weight of the original query" arg:"--originalQueryWeight"`
	Mu                  *float64       `help:"Dirichlet smoothing parameter" arg:"--mu"`
	Precision           *int           `help:"Decimal digits of each weight" arg:"--precision"`
	Parallelism         *int           `help:"Topics expanded concurrently (0 is one per CPU)" arg:"-p,--parallelism"`
	Weighting           *string        `help:"Feedback document weighting (uniform, score)" arg:"--weighting"`
	TopicField          *string        `help:"Topic field used as the query" arg:"--topic-field"`
	Analyser            *string        `help:"Topic analyser (nonstemming, porter, simple)" arg:"--analyser"`
	Timeout             *time.Duration `help:"Timeout of each feedback document lookup" arg:"--timeout"`
	FilterTerms         bool           `help:"Remove short, non alphanumeric and very common feedback terms" arg:"--filter-terms"`
	RunTag              *string        `help:"Tag of the run" arg:"--runtag"`

	Report       string `help:"Path to write per-topic measurements to" arg:"--report"`
	ReportFormat string `help:"Format of the measurements (csv, json)" arg:"--report-format"`
	Metrics      string `help:"Path to write Prometheus metrics to" arg:"--metrics"`
	Progress     bool   `help:"Show a progress bar" arg:"--progress"`
	Verbose      bool   `help:"Log debug messages" arg:"-v"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
# %s
Expand topics with an RM3 relevance model estimated from the top documents of a run.`, name, version)
}

// apply overrides the configuration with the parameters given on the command line.
func (a args) apply(c *prf.Config) {
	if a.FeedbackDocuments != nil {
		c.FeedbackDocuments = *a.FeedbackDocuments
	}
	if a.FeedbackTerms != nil {
		c.FeedbackTerms = *a.FeedbackTerms
	}
	if a.OriginalQueryWeight != nil {
		c.OriginalQueryWeight = *a.OriginalQueryWeight
	}
	if a.Mu != nil {
		c.Mu = *a.Mu
	}
	if a.Precision != nil {
		c.Precision = *a.Precision
	}
	if a.Parallelism != nil {
		c.Parallelism = *a.Parallelism
	}
	if a.Weighting != nil {
		c.Weighting = *a.Weighting
	}
	if a.TopicField != nil {
		c.TopicField = *a.TopicField
	}
	if a.Analyser != nil {
		c.Analyser = *a.Analyser
	}
	if a.Timeout != nil {
		c.Timeout = *a.Timeout
	}
	if a.FilterTerms {
		c.FilterTerms = true
	}
	if a.RunTag != nil {
		c.RunTag = *a.RunTag
	}
}

// openStatisticsSource opens the statistics source named by the arguments, wrapped in the requested caches. The
// returned closer releases the underlying index or client.
func openStatisticsSource(a args) (stats.StatisticsSource, io.Closer, error) {
	var (
		source stats.StatisticsSource
		closer io.Closer
	)
	switch {
	case len(a.Index) > 0 && len(a.ElasticsearchHosts) > 0:
		return nil, nil, fmt.Errorf("use either an index or elasticsearch, not both")
	case len(a.Index) > 0:
		b, err := stats.OpenBoltStatisticsSource(a.Index, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		source, closer = b, b
	case len(a.ElasticsearchHosts) > 0:
		options := []func(*stats.ElasticsearchStatisticsSource){
			stats.ElasticsearchHosts(a.ElasticsearchHosts...),
			stats.ElasticsearchIndex(a.ElasticsearchIndex),
			stats.ElasticsearchSniff(a.ElasticsearchSniff),
		}
		if len(a.ElasticsearchField) > 0 {
			options = append(options, stats.ElasticsearchField(a.ElasticsearchField))
		}
		es, err := stats.NewElasticsearchStatisticsSource(options...)
		if err != nil {
			return nil, nil, err
		}
		source, closer = es, es
	default:
		return nil, nil, fmt.Errorf("no statistics source, specify an index or elasticsearch hosts")
	}

	if len(a.CacheDir) > 0 {
		source = stats.NewDiskCachedStatisticsSource(source, a.CacheDir)
	}
	if a.CacheSize > 0 {
		cached, err := stats.NewCachedStatisticsSource(source, a.CacheSize)
		if err != nil {
			closer.Close()
			return nil, nil, err
		}
		source = cached
	}
	return source, closer, nil
}

func main() {
	start := time.Now()

	a := args{
		TopicFormat:  "trec",
		Format:       "line",
		ReportFormat: "json",
	}
	arg.MustParse(&a)

	log, err := cmd.NewLogger(a.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(a, log); err != nil {
		log.Fatalw("expansion failed", "error", err)
	}
	log.Infow("total run time", "elapsed", cmd.FormatDuration(time.Since(start)))
}

func run(a args, log *zap.SugaredLogger) error {
	config := prf.DefaultConfig()
	if len(a.Config) > 0 {
		var err error
		config, err = prf.LoadConfig(a.Config)
		if err != nil {
			return err
		}
	}
	a.apply(&config)
	if err := config.Validate(); err != nil {
		return err
	}

	var formatter output.LineFormatter
	switch a.Format {
	case "line":
		formatter = output.FormatLine
	case "cqr":
		formatter = output.CQRFormatter()
	default:
		return fmt.Errorf("unknown output format %q (supported: cqr, line)", a.Format)
	}

	components := []func() interface{}{
		prf.Logger(log),
		prf.Formatter(formatter),
		prf.Progress(a.Progress),
	}
	if len(a.Report) > 0 {
		f, err := output.NewMeasurementFormatter(a.ReportFormat)
		if err != nil {
			return err
		}
		components = append(components, prf.MeasurementOutput(f))
	}
	var m *metrics.Metrics
	if len(a.Metrics) > 0 {
		m = metrics.New(prometheus.Labels{"runtag": config.RunTag})
		components = append(components, prf.Metrics(m))
	}

	ts, err := query.NewTopicSource(a.TopicFormat, config.TopicField)
	if err != nil {
		return err
	}
	log.Infow("loading topics", "format", a.TopicFormat, "paths", a.Topics)
	topics, err := query.LoadTopics(ts, a.Topics...)
	if err != nil {
		return err
	}

	log.Infow("loading run", "path", a.Run)
	r, err := retrieval.LoadRun(a.Run)
	if err != nil {
		return err
	}
	if err := r.Handle(retrieval.NewDeduplicator()); err != nil {
		return err
	}

	source, closer, err := openStatisticsSource(a)
	if err != nil {
		return err
	}
	defer closer.Close()

	var w io.Writer = os.Stdout
	if len(a.Output) > 0 {
		f, err := os.Create(a.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := prf.NewPipeline(source, config, components...)
	summary, err := p.Execute(ctx, topics, r, w)
	if err != nil {
		if len(a.Output) > 0 {
			os.Remove(a.Output)
		}
		return err
	}

	if len(a.Report) > 0 && len(summary.Measurements) > 0 {
		if err := os.WriteFile(a.Report, []byte(summary.Measurements[0]), 0644); err != nil {
			return err
		}
	}
	if m != nil {
		if err := m.WriteToTextfile(a.Metrics); err != nil {
			return err
		}
	}
	return nil
}
