// Package query provides the weighted term representation of queries and sources for loading topics in different
// formats.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Topic is an information need: an identifier and the text of each of its fields (e.g. title, desc, narr).
type Topic struct {
	ID     string
	Fields map[string]string
}

// Topics is an ordered collection of topics.
type Topics []Topic

// TopicSource represents a source for topics and how to parse them.
type TopicSource interface {
	// Load parses the topics at path, which may be a file or a directory depending on the source.
	Load(path string) (Topics, error)
}

// topicSources is the closed set of topic formats, selected by name. Formats with a single text per topic store it
// under the given field.
var topicSources = map[string]func(field string) TopicSource{
	"trec":    func(string) TopicSource { return TrecTopicSource{} },
	"tsv":     func(field string) TopicSource { return NewTsvTopicSource(field) },
	"keyword": func(field string) TopicSource { return NewKeywordTopicSource(field) },
	"jsonl":   func(string) TopicSource { return JsonlTopicSource{} },
}

// NewTopicSource creates the topic source registered under name. Sources that hold one text per topic store it under
// field, so that it is the field expanded.
func NewTopicSource(name, field string) (TopicSource, error) {
	if fn, ok := topicSources[strings.ToLower(name)]; ok {
		return fn(field), nil
	}
	return nil, fmt.Errorf("unsupported topic format %q (supported: %s)", name, strings.Join(TopicSourceNames(), ", "))
}

// TopicSourceNames are the names of the registered topic formats.
func TopicSourceNames() []string {
	names := make([]string, 0, len(topicSources))
	for name := range topicSources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadTopics loads topics from each path and merges them, sorted by identifier. A topic in a later path replaces one
// with the same identifier from an earlier path.
func LoadTopics(source TopicSource, paths ...string) (Topics, error) {
	merged := make(map[string]Topic)
	for _, path := range paths {
		topics, err := source.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "could not load topics from %s", path)
		}
		for _, t := range topics {
			merged[t.ID] = t
		}
	}

	topics := make(Topics, 0, len(merged))
	for _, t := range merged {
		topics = append(topics, t)
	}
	topics.Sort()
	return topics, nil
}

// Sort orders topics by identifier (see Less).
func (t Topics) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		return Less(t[i].ID, t[j].ID)
	})
}

// Less is the natural order of topic identifiers: integer identifiers in numeric order come first, followed by every
// other identifier in lexicographic order.
func Less(a, b string) bool {
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	switch {
	case errA == nil && errB == nil:
		if x != y {
			return x < y
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
