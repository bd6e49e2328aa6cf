package query

import (
	"os"
	"path/filepath"
	"strings"
)

// KeywordTopicSource is a source of topics stored one per file in a directory, where the file name is the topic
// identifier and the file contents are the query text.
type KeywordTopicSource struct {
	field string
}

// Load takes a directory of queries and parses them "as is".
func (kw KeywordTopicSource) Load(directory string) (Topics, error) {
	// First, get a list of files in the directory.
	files, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	// Next, load each file into a topic.
	var topics Topics
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		source, err := os.ReadFile(filepath.Join(directory, f.Name()))
		if err != nil {
			return nil, err
		}
		topics = append(topics, Topic{
			ID:     f.Name(),
			Fields: map[string]string{kw.field: strings.TrimSpace(string(source))},
		})
	}

	// Finally, return the topics.
	return topics, nil
}

// NewKeywordTopicSource creates a new keyword topic source storing query text under field.
func NewKeywordTopicSource(field string) KeywordTopicSource {
	return KeywordTopicSource{field: field}
}
