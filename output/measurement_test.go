package output_test

import (
	"encoding/json"
	"testing"

	"github.com/hscells/prf/output"
)

var (
	topics  = []string{"1", "2"}
	headers = []string{"feedback_documents", "expansion_terms"}
	data    = [][]float64{{10, 0}, {20, 2.5}}
)

func TestCsvMeasurementFormatter(t *testing.T) {
	s, err := output.CsvMeasurementFormatter(topics, headers, data)
	if err != nil {
		t.Fatal(err)
	}
	expected := "Topic,feedback_documents,expansion_terms\n1,10,20\n2,0,2.5\n"
	if s != expected {
		t.Fatalf("expected %q, got %q", expected, s)
	}
}

func TestJsonMeasurementFormatter(t *testing.T) {
	s, err := output.JsonMeasurementFormatter(topics, headers, data)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]map[string]float64
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	if m["2"]["expansion_terms"] != 2.5 || m["1"]["feedback_documents"] != 10 {
		t.Fatalf("unexpected measurements %v", m)
	}
}

func TestMeasurementShape(t *testing.T) {
	for name, f := range output.MeasurementFormatters {
		if _, err := f(topics, headers, [][]float64{{1, 2}}); err == nil {
			t.Errorf("%s: expected an error for missing measurements", name)
		}
		if _, err := f(topics, headers[:1], [][]float64{{1}}); err == nil {
			t.Errorf("%s: expected an error for a missing topic", name)
		}
	}
	if _, err := output.NewMeasurementFormatter("CSV"); err != nil {
		t.Fatal(err)
	}
	if _, err := output.NewMeasurementFormatter("xml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
