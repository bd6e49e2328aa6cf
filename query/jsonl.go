package query

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// JsonlTopicSource reads one JSON object per line. The "id" member (string or number) is the topic identifier and every
// other string member is a field.
type JsonlTopicSource struct{}

// Load parses a jsonl topics file.
func (js JsonlTopicSource) Load(path string) (Topics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return js.Read(f)
}

// Read parses jsonl topics from a reader.
func (JsonlTopicSource) Read(r io.Reader) (Topics, error) {
	var topics Topics
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for s.Scan() {
		line++
		b := bytes.TrimSpace(s.Bytes())
		if len(b) == 0 {
			continue
		}

		var obj map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		t := Topic{Fields: make(map[string]string)}
		for k, v := range obj {
			if k == "id" {
				switch id := v.(type) {
				case string:
					t.ID = id
				case json.Number:
					t.ID = id.String()
				default:
					return nil, errors.Errorf("line %d: unsupported id %v", line, v)
				}
				continue
			}
			if text, ok := v.(string); ok {
				t.Fields[k] = text
			}
		}
		if len(t.ID) == 0 {
			return nil, errors.Errorf("line %d: topic has no id", line)
		}
		topics = append(topics, t)
	}
	return topics, s.Err()
}
