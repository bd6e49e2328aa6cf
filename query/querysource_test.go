package query_test

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/hscells/prf/query"
)

func TestTrecTopicSource(t *testing.T) {
	topics, err := query.LoadTopics(query.TrecTopicSource{}, "testdata/topics.trec")
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(topics))
	}

	expected := query.Topics{
		{ID: "301", Fields: map[string]string{
			"title": "International Organized Crime",
			"desc":  "Identify organizations that participate in international criminal activity.",
		}},
		{ID: "302", Fields: map[string]string{
			"title": "Poliomyelitis and Post-Polio",
			"desc":  "Is the disease of Poliomyelitis (polio) under control in the world?",
			"narr":  "Relevant documents should contain data or outbreaks of the polio disease (large or small scale).",
		}},
	}
	if !reflect.DeepEqual(topics, expected) {
		t.Fatalf("expected %v, got %v", expected, topics)
	}
}

func TestReadTrecTopicsWithoutNumber(t *testing.T) {
	_, err := query.ReadTrecTopics(strings.NewReader("<top>\n<title> no number\n</top>\n"))
	if err == nil {
		t.Fatal("expected an error for a topic without a number")
	}
}

func TestTsvTopicSource(t *testing.T) {
	topics, err := query.LoadTopics(query.NewTsvTopicSource("title"), "testdata/topics.tsv")
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, len(topics))
	for i, topic := range topics {
		ids[i] = topic.ID
	}
	if !reflect.DeepEqual(ids, []string{"2", "10", "MB01"}) {
		t.Fatalf("unexpected topic order %v", ids)
	}
	if topics[1].Fields["title"] != "brown fox" {
		t.Fatalf("unexpected title %q", topics[1].Fields["title"])
	}

	if _, err := query.NewTsvTopicSource("title").Read(strings.NewReader("no tab here\n")); err == nil {
		t.Fatal("expected an error for a line without a tab")
	}
}

func TestJsonlTopicSource(t *testing.T) {
	topics, err := query.LoadTopics(query.JsonlTopicSource{}, "testdata/topics.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	expected := query.Topics{
		{ID: "7", Fields: map[string]string{"title": "brown fox", "desc": "foxes that are brown"}},
		{ID: "q1", Fields: map[string]string{"title": "bear"}},
	}
	if !reflect.DeepEqual(topics, expected) {
		t.Fatalf("expected %v, got %v", expected, topics)
	}

	if _, err := (query.JsonlTopicSource{}).Read(strings.NewReader(`{"title": "no id"}`)); err == nil {
		t.Fatal("expected an error for a topic without an id")
	}
}

func TestKeywordTopicSource(t *testing.T) {
	topics, err := query.LoadTopics(query.NewKeywordTopicSource("title"), "testdata/keyword")
	if err != nil {
		t.Fatal(err)
	}
	expected := query.Topics{
		{ID: "1", Fields: map[string]string{"title": "bear woods"}},
		{ID: "3", Fields: map[string]string{"title": "brown fox"}},
	}
	if !reflect.DeepEqual(topics, expected) {
		t.Fatalf("expected %v, got %v", expected, topics)
	}
}

func TestLoadTopicsMerges(t *testing.T) {
	topics, err := query.LoadTopics(query.NewTsvTopicSource("title"), "testdata/topics.tsv", "testdata/keyword/../topics.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 3 {
		t.Fatalf("expected duplicate topics to be merged, got %d topics", len(topics))
	}
}

func TestNewTopicSource(t *testing.T) {
	for _, name := range query.TopicSourceNames() {
		if _, err := query.NewTopicSource(name, "title"); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := query.NewTopicSource("TREC", "title"); err != nil {
		t.Errorf("expected names to be case insensitive: %v", err)
	}
	if _, err := query.NewTopicSource("xml", "title"); err == nil {
		t.Error("expected an error for an unknown format")
	}

	// Single text formats store the text under the requested field.
	for _, test := range []struct{ name, path string }{{"tsv", "testdata/topics.tsv"}, {"keyword", "testdata/keyword"}} {
		ts, err := query.NewTopicSource(test.name, "desc")
		if err != nil {
			t.Fatal(err)
		}
		topics, err := query.LoadTopics(ts, test.path)
		if err != nil {
			t.Fatal(err)
		}
		for _, topic := range topics {
			if _, ok := topic.Fields["desc"]; !ok {
				t.Fatalf("%s: expected topic %s to have a desc field, got %v", test.name, topic.ID, topic.Fields)
			}
		}
	}
}

func TestReadTrecTopicsLabels(t *testing.T) {
	topics, err := query.ReadTrecTopics(strings.NewReader(`<top>
<head> Tipster Topic Description
<num> Number: 051
<dom> Domain: International Economics
<title> Topic: Airbus Subsidies
<desc> Description:
Document will discuss government assistance to Airbus Industrie.
</top>
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].ID != "051" {
		t.Fatalf("unexpected topics %v", topics)
	}
	if title := topics[0].Fields["title"]; title != "Airbus Subsidies" {
		t.Fatalf("expected the label to be removed from the title, got %q", title)
	}
}

func TestLess(t *testing.T) {
	ids := []string{"b", "10", "a", "2", "MB01", "1"}
	sort.Slice(ids, func(i, j int) bool {
		return query.Less(ids[i], ids[j])
	})
	expected := []string{"1", "2", "10", "MB01", "a", "b"}
	if !reflect.DeepEqual(ids, expected) {
		t.Fatalf("expected %v, got %v", expected, ids)
	}
}
