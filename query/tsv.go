package query

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// TsvTopicSource reads one topic per line as `id<TAB>text`. The text becomes a single field.
type TsvTopicSource struct {
	field string
}

// NewTsvTopicSource creates a tsv topic source whose text is stored under field.
func NewTsvTopicSource(field string) TsvTopicSource {
	return TsvTopicSource{field: field}
}

// Load parses a tsv topics file.
func (ts TsvTopicSource) Load(path string) (Topics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ts.Read(f)
}

// Read parses tsv topics from a reader. Blank lines are ignored.
func (ts TsvTopicSource) Read(r io.Reader) (Topics, error) {
	var topics Topics
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		l := strings.TrimRight(s.Text(), "\r")
		if len(strings.TrimSpace(l)) == 0 {
			continue
		}
		parts := strings.SplitN(l, "\t", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("line %d: expected id<TAB>text", line)
		}
		topics = append(topics, Topic{
			ID:     strings.TrimSpace(parts[0]),
			Fields: map[string]string{ts.field: strings.TrimSpace(parts[1])},
		})
	}
	return topics, s.Err()
}
