package query

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var (
	trecTag    = regexp.MustCompile(`^<(/?)([a-zA-Z]+)>\s*(.*)$`)
	trecLabels = map[string]string{
		"num":   "Number:",
		"title": "Topic:",
		"desc":  "Description:",
		"narr":  "Narrative:",
	}
)

// TrecTopicSource reads topics in the classic TREC SGML format:
//
//	<top>
//	<num> Number: 301
//	<title> International Organized Crime
//	<desc> Description:
//	...
//	</top>
//
// Every tag other than num becomes a field of the topic, keyed by the tag name.
type TrecTopicSource struct{}

// Load parses a TREC topics file.
func (TrecTopicSource) Load(path string) (Topics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTrecTopics(f)
}

// ReadTrecTopics parses TREC topics from a reader.
func ReadTrecTopics(r io.Reader) (Topics, error) {
	var (
		topics  Topics
		current *Topic
		field   string
		text    = make(map[string][]string)
		line    int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		id := strings.TrimSpace(strings.Join(text["num"], " "))
		if len(id) == 0 {
			return errors.Errorf("line %d: topic has no number", line)
		}
		current.ID = id
		for name, parts := range text {
			if name == "num" {
				continue
			}
			current.Fields[name] = strings.TrimSpace(strings.Join(parts, " "))
		}
		topics = append(topics, *current)
		current = nil
		text = make(map[string][]string)
		return nil
	}

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	for s.Scan() {
		line++
		l := strings.TrimSpace(s.Text())

		if m := trecTag.FindStringSubmatch(l); m != nil {
			closing, tag, rest := m[1] == "/", strings.ToLower(m[2]), m[3]
			switch {
			case tag == "top" && !closing:
				if err := flush(); err != nil {
					return nil, err
				}
				current = &Topic{Fields: make(map[string]string)}
				field = ""
			case tag == "top" && closing:
				if err := flush(); err != nil {
					return nil, err
				}
				field = ""
			case closing:
				field = ""
			default:
				field = tag
				if label, ok := trecLabels[tag]; ok {
					rest = strings.TrimSpace(strings.TrimPrefix(rest, label))
				}
				// <title> text </title> on a single line.
				closed := false
				if i := strings.Index(rest, "</"); i >= 0 {
					rest, closed = strings.TrimSpace(rest[:i]), true
				}
				if current != nil && len(rest) > 0 {
					text[tag] = append(text[tag], rest)
				}
				if closed {
					field = ""
				}
			}
			continue
		}

		if current != nil && len(field) > 0 && len(l) > 0 {
			text[field] = append(text[field], l)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return topics, nil
}
