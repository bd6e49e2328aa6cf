package query_test

import (
	"math"
	"reflect"
	"testing"

	"github.com/hscells/prf/query"
)

func TestFromTerms(t *testing.T) {
	m := query.FromTerms([]string{"brown", "fox", "brown"})
	if !reflect.DeepEqual(m, query.Model{"brown": 1, "fox": 1}) {
		t.Fatalf("unexpected model %v", m)
	}
	n := m.Normalise()
	if n["brown"] != 0.5 || n["fox"] != 0.5 {
		t.Fatalf("expected a uniform model, got %v", n)
	}
}

func TestNormalise(t *testing.T) {
	m := query.Model{"a": 3, "b": 1, "c": 0.5, "d": 7.25}
	n := m.Normalise()
	if math.Abs(n.Sum()-1) > 1e-6 {
		t.Fatalf("expected weights to sum to one, got %v", n.Sum())
	}
	if m["a"] != 3 {
		t.Fatal("expected the original model to be left untouched")
	}

	empty := query.Model{}.Normalise()
	if len(empty) != 0 {
		t.Fatalf("unexpected model %v", empty)
	}
}

func TestRanked(t *testing.T) {
	m := query.Model{"the": 0.2, "brown": 0.2, "fox": 0.1, "bear": 0.1, "zebra": 0.4}
	expected := []string{"zebra", "brown", "the", "bear", "fox"}
	for i, wt := range m.Ranked() {
		if wt.Term != expected[i] {
			t.Fatalf("position %d: expected %s, got %s", i, expected[i], wt.Term)
		}
	}
}

func TestTruncate(t *testing.T) {
	m := query.Model{"the": 0.2, "brown": 0.2, "fox": 0.1, "bear": 0.1, "zebra": 0.4}
	tr := m.Truncate(3)
	if !reflect.DeepEqual(tr, query.Model{"zebra": 0.4, "brown": 0.2, "the": 0.2}) {
		t.Fatalf("unexpected model %v", tr)
	}
	if len(m.Truncate(10)) != len(m) {
		t.Fatal("expected truncation beyond the size of the model to keep every term")
	}
}

func TestInterpolate(t *testing.T) {
	original := query.Model{"brown": 0.5, "fox": 0.5}
	feedback := query.Model{"brown": 0.5, "the": 0.25, "bear": 0.25}

	m := query.Interpolate(original, feedback, 0.5)
	expected := query.Model{"brown": 0.5, "fox": 0.25, "the": 0.125, "bear": 0.125}
	if !reflect.DeepEqual(m, expected) {
		t.Fatalf("expected %v, got %v", expected, m)
	}

	if m := query.Interpolate(original, feedback, 1); !reflect.DeepEqual(m, original) {
		t.Fatalf("expected the original model, got %v", m)
	}
	if m := query.Interpolate(original, feedback, 0); !reflect.DeepEqual(m, feedback) {
		t.Fatalf("expected the feedback model, got %v", m)
	}
}
