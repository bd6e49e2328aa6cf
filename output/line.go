// Package output serialises expanded queries.
package output

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hscells/prf/query"
	"github.com/pkg/errors"
)

// DefaultPrecision is the number of decimal digits written for each weight.
const DefaultPrecision = 4

// SerialisationError is returned when a weight cannot be written as a decimal number.
type SerialisationError struct {
	Topic  string
	Term   string
	Weight float64
}

func (e SerialisationError) Error() string {
	return fmt.Sprintf("topic %s: term %q has unrepresentable weight %v", e.Topic, e.Term, e.Weight)
}

// LineFormatter renders the expanded query of a topic as a single line of output.
type LineFormatter func(topic string, m query.Model, precision int) (string, error)

// FormatLine renders an expanded query as `topic<TAB>term^weight term^weight ...`. Terms are written by descending
// weight, ties broken lexicographically. Weights are rounded to the given number of decimal digits; exact halves are
// rounded to even.
func FormatLine(topic string, m query.Model, precision int) (string, error) {
	var b strings.Builder
	b.WriteString(topic)
	b.WriteByte('\t')
	for i, wt := range m.Ranked() {
		if isInfOrNaN(wt.Weight) {
			return "", SerialisationError{Topic: topic, Term: wt.Term, Weight: wt.Weight}
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(wt.Term)
		b.WriteByte('^')
		b.WriteString(strconv.FormatFloat(wt.Weight, 'f', precision, 64))
	}
	return b.String(), nil
}

// ParseLine reads a line written by FormatLine.
func ParseLine(line string) (string, query.Model, error) {
	line = strings.TrimRight(line, "\r\n")
	tab := strings.IndexByte(line, '\t')
	if tab < 0 {
		return "", nil, errors.Errorf("line %q has no tab", line)
	}
	topic := line[:tab]
	m := make(query.Model)
	for _, token := range strings.Fields(line[tab+1:]) {
		caret := strings.LastIndexByte(token, '^')
		if caret <= 0 {
			return "", nil, errors.Errorf("topic %s: malformed token %q", topic, token)
		}
		w, err := strconv.ParseFloat(token[caret+1:], 64)
		if err != nil {
			return "", nil, errors.Wrapf(err, "topic %s: token %q", topic, token)
		}
		m[token[:caret]] = w
	}
	return topic, m, nil
}

func isInfOrNaN(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
