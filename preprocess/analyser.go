package preprocess

import (
	"strings"

	"github.com/bbalet/stopwords"
	porterstemmer "github.com/reiver/go-porterstemmer"
)

// Analyser turns raw text into a sequence of index terms. The same analyser must be used for queries and for the
// documents the statistics source was built from.
type Analyser interface {
	Analyse(text string) []string
}

// AnalyserFunc adapts a function into an Analyser.
type AnalyserFunc func(text string) []string

// Analyse calls f.
func (f AnalyserFunc) Analyse(text string) []string {
	return f(text)
}

// StandardAnalyser normalises text with a chain of processors, splits it on whitespace, and optionally removes English
// stopwords and applies the Porter stemmer.
type StandardAnalyser struct {
	processors []QueryProcessor
	stopwords  bool
	stemming   bool
	minLength  int
}

// AnalyserProcessors sets the processors applied before tokenisation.
func AnalyserProcessors(processors ...QueryProcessor) func(*StandardAnalyser) {
	return func(a *StandardAnalyser) {
		a.processors = processors
	}
}

// AnalyserStopwords toggles stopword removal.
func AnalyserStopwords(remove bool) func(*StandardAnalyser) {
	return func(a *StandardAnalyser) {
		a.stopwords = remove
	}
}

// AnalyserStemming toggles Porter stemming.
func AnalyserStemming(stem bool) func(*StandardAnalyser) {
	return func(a *StandardAnalyser) {
		a.stemming = stem
	}
}

// AnalyserMinLength drops tokens shorter than n characters.
func AnalyserMinLength(n int) func(*StandardAnalyser) {
	return func(a *StandardAnalyser) {
		a.minLength = n
	}
}

// NewAnalyser creates an analyser that folds, lowercases, and strips punctuation, removes stopwords, and stems, unless
// configured otherwise.
func NewAnalyser(options ...func(*StandardAnalyser)) StandardAnalyser {
	a := StandardAnalyser{
		processors: []QueryProcessor{Fold, Lowercase, AlphaNum},
		stopwords:  true,
		stemming:   true,
		minLength:  1,
	}
	for _, option := range options {
		option(&a)
	}
	return a
}

// Analyse turns text into terms.
func (a StandardAnalyser) Analyse(text string) []string {
	text = Process(text, a.processors...)
	if a.stopwords {
		text = stopwords.CleanString(text, "en", false)
	}

	fields := strings.Fields(text)
	terms := make([]string, 0, len(fields))
	for _, tok := range fields {
		if a.stemming {
			tok = porterstemmer.StemString(tok)
		}
		if len(tok) < a.minLength {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

var (
	// PorterAnalyser removes stopwords and stems.
	PorterAnalyser = NewAnalyser()
	// NonStemmingAnalyser removes stopwords without stemming. It is the default.
	NonStemmingAnalyser = NewAnalyser(AnalyserStemming(false))
	// SimpleAnalyser only normalises and tokenises.
	SimpleAnalyser = NewAnalyser(AnalyserStopwords(false), AnalyserStemming(false))
)

// NewNamedAnalyser returns one of the predefined analysers by name.
func NewNamedAnalyser(name string) (Analyser, bool) {
	switch name {
	case "default", "nonstemming", "":
		return NonStemmingAnalyser, true
	case "porter":
		return PorterAnalyser, true
	case "simple":
		return SimpleAnalyser, true
	}
	return nil, false
}
