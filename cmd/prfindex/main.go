package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/hscells/prf/cmd"
	"github.com/hscells/prf/preprocess"
	"github.com/hscells/prf/stats"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
)

var (
	name    = "prfindex"
	version = "18.Oct.2026"
)

type args struct {
	Format   string `help:"Format of the corpus (tsv: id<TAB>text, jsonl: {\"id\": ..., \"contents\": ...})" arg:"-f"`
	Field    string `help:"Member of each jsonl document holding its text" arg:"--field"`
	Analyser string `help:"Analyser applied to documents (nonstemming, porter, simple); must match the one used for topics" arg:"-a"`
	Verbose  bool   `help:"Log debug messages" arg:"-v"`
	Corpus   string `help:"Path to the corpus" arg:"required,positional"`
	Index    string `help:"Path of the bolt index to create" arg:"required,positional"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
# %s
Build the statistics index read by rm3expand from a corpus of documents.`, name, version)
}

// readCorpus calls fn with the identifier and text of each document of the corpus.
func readCorpus(r io.Reader, format, field string, fn func(id, text string)) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for s.Scan() {
		line++
		text := s.Text()
		if len(strings.TrimSpace(text)) == 0 {
			continue
		}
		switch format {
		case "tsv":
			parts := strings.SplitN(text, "\t", 2)
			if len(parts) != 2 {
				return errors.Errorf("line %d: expected id<TAB>text", line)
			}
			fn(strings.TrimSpace(parts[0]), parts[1])
		case "jsonl":
			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(text), &doc); err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			id, ok := doc["id"].(string)
			if !ok {
				return errors.Errorf("line %d: document has no string id", line)
			}
			contents, _ := doc[field].(string)
			fn(id, contents)
		default:
			return errors.Errorf("unknown corpus format %q (supported: jsonl, tsv)", format)
		}
	}
	return s.Err()
}

func main() {
	start := time.Now()

	a := args{
		Format:   "tsv",
		Field:    "contents",
		Analyser: "nonstemming",
	}
	arg.MustParse(&a)

	log, err := cmd.NewLogger(a.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	analyser, ok := preprocess.NewNamedAnalyser(a.Analyser)
	if !ok {
		log.Fatalw("unknown analyser", "analyser", a.Analyser)
	}

	f, err := os.Open(a.Corpus)
	if err != nil {
		log.Fatalw("could not open corpus", "error", err)
	}
	defer f.Close()

	log.Infow("analysing corpus", "path", a.Corpus, "format", a.Format)
	documents := make(map[string][]string)
	bar := pb.New(0)
	bar.Output = os.Stderr
	bar.Start()
	err = readCorpus(f, a.Format, a.Field, func(id, text string) {
		documents[id] = analyser.Analyse(text)
		bar.Increment()
	})
	bar.Finish()
	if err != nil {
		log.Fatalw("could not read corpus", "error", err)
	}

	source := stats.NewMemoryStatisticsSourceFromTerms(documents)
	log.Infow("writing index", "path", a.Index, "documents", len(documents), "terms", len(source.Vocabulary()))
	if err := stats.WriteBoltIndex(a.Index, source); err != nil {
		log.Fatalw("could not write index", "error", err)
	}
	log.Infow("total run time", "elapsed", cmd.FormatDuration(time.Since(start)))
}
