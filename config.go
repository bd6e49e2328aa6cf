package prf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hscells/prf/feedback"
	"github.com/hscells/prf/preprocess"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters of an expansion run.
type Config struct {
	// FeedbackDocuments is the number of top ranked documents used as feedback (fbDocs).
	FeedbackDocuments int `yaml:"fbDocs"`
	// FeedbackTerms is the number of expansion terms kept from the relevance model (fbTerms).
	FeedbackTerms int `yaml:"fbTerms"`
	// OriginalQueryWeight is the interpolation weight (lambda) of the original query.
	OriginalQueryWeight float64 `yaml:"originalQueryWeight"`
	// Mu is the Dirichlet smoothing parameter.
	Mu float64 `yaml:"mu"`
	// Precision is the number of decimal digits written for each weight.
	Precision int `yaml:"precision"`
	// Parallelism is the number of topics expanded concurrently; zero means one per CPU.
	Parallelism int `yaml:"parallelism"`
	// Weighting names the feedback document weighting (uniform or score).
	Weighting string `yaml:"weighting"`
	// TopicField is the topic field used as the original query.
	TopicField string `yaml:"topicField"`
	// Analyser names the analyser applied to topic text.
	Analyser string `yaml:"analyser"`
	// Timeout bounds each feedback document lookup; zero disables it.
	Timeout time.Duration `yaml:"timeout"`
	// FilterTerms removes short, non alphanumeric and very common feedback terms.
	FilterTerms bool `yaml:"filterTerms"`
	// RunTag identifies the run in logs and metrics.
	RunTag string `yaml:"runtag"`
}

// InvalidConfigurationError is returned when a configuration value is out of range. Nothing is processed once a
// configuration has been rejected.
type InvalidConfigurationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v: %s", e.Field, e.Value, e.Reason)
}

// DefaultConfig returns the configuration used when nothing else is specified.
func DefaultConfig() Config {
	return Config{
		FeedbackDocuments:   10,
		FeedbackTerms:       10,
		OriginalQueryWeight: 0.5,
		Mu:                  1000,
		Precision:           4,
		Weighting:           feedback.UniformWeighting.Name(),
		TopicField:          "title",
		Analyser:            "nonstemming",
		RunTag:              "prf",
	}
}

// Validate checks every parameter, returning an InvalidConfigurationError for the first bad one.
func (c Config) Validate() error {
	switch {
	case c.FeedbackDocuments <= 0:
		return InvalidConfigurationError{"fbDocs", c.FeedbackDocuments, "must be positive"}
	case c.FeedbackTerms <= 0:
		return InvalidConfigurationError{"fbTerms", c.FeedbackTerms, "must be positive"}
	case !(c.OriginalQueryWeight >= 0 && c.OriginalQueryWeight <= 1):
		return InvalidConfigurationError{"originalQueryWeight", c.OriginalQueryWeight, "must be between 0 and 1"}
	case !(c.Mu > 0):
		return InvalidConfigurationError{"mu", c.Mu, "must be positive"}
	case c.Precision < 0:
		return InvalidConfigurationError{"precision", c.Precision, "must not be negative"}
	case c.Parallelism < 0:
		return InvalidConfigurationError{"parallelism", c.Parallelism, "must not be negative"}
	case c.Timeout < 0:
		return InvalidConfigurationError{"timeout", c.Timeout, "must not be negative"}
	case len(strings.TrimSpace(c.TopicField)) == 0:
		return InvalidConfigurationError{"topicField", c.TopicField, "must not be empty"}
	}
	if _, err := feedback.NewDocumentWeighting(c.Weighting); err != nil {
		return InvalidConfigurationError{"weighting", c.Weighting, err.Error()}
	}
	if _, ok := preprocess.NewNamedAnalyser(c.Analyser); !ok {
		return InvalidConfigurationError{"analyser", c.Analyser, "unknown analyser"}
	}
	return nil
}

// LoadConfig reads a configuration file over the defaults. Files ending in .yaml or .yml are read as YAML, anything
// else as a Java style properties file using the same keys.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrapf(err, "reading config file %s", path)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, errors.Wrapf(err, "parsing config file %s", path)
		}
	default:
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return c, errors.Wrapf(err, "reading config file %s", path)
		}
		if err := c.applyProperties(p); err != nil {
			return c, errors.Wrapf(err, "parsing config file %s", path)
		}
	}
	return c, nil
}

// applyProperties copies the keys present in p over the configuration. Values are parsed strictly, so a malformed
// value is an error rather than a silent default.
func (c *Config) applyProperties(p *properties.Properties) error {
	ints := map[string]*int{
		"fbDocs":      &c.FeedbackDocuments,
		"fbTerms":     &c.FeedbackTerms,
		"precision":   &c.Precision,
		"parallelism": &c.Parallelism,
	}
	for key, v := range ints {
		s, ok := p.Get(key)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.Wrap(err, key)
		}
		*v = i
	}

	floats := map[string]*float64{
		"originalQueryWeight": &c.OriginalQueryWeight,
		"mu":                  &c.Mu,
	}
	for key, v := range floats {
		s, ok := p.Get(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.Wrap(err, key)
		}
		*v = f
	}

	strs := map[string]*string{
		"weighting":  &c.Weighting,
		"topicField": &c.TopicField,
		"analyser":   &c.Analyser,
		"runtag":     &c.RunTag,
	}
	for key, v := range strs {
		if s, ok := p.Get(key); ok {
			*v = s
		}
	}

	if s, ok := p.Get("timeout"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return errors.Wrap(err, "timeout")
		}
		c.Timeout = d
	}
	if s, ok := p.Get("filterTerms"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return errors.Wrap(err, "filterTerms")
		}
		c.FilterTerms = b
	}
	return nil
}
