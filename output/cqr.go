package output

import (
	"encoding/json"

	"github.com/hscells/cqr"
	"github.com/hscells/prf/query"
	"github.com/pkg/errors"
)

// Weight is the keyword option holding the weight of an expansion term.
const Weight = "weight"

// CQRQuery is an expanded query in the common query representation.
type CQRQuery struct {
	Topic string           `json:"topic"`
	Query cqr.BooleanQuery `json:"query"`
}

// NewCQRQuery represents an expanded query as a disjunction of weighted keywords, ranked like FormatLine. Keywords
// are searched in the given fields.
func NewCQRQuery(topic string, m query.Model, fields ...string) (CQRQuery, error) {
	ranked := m.Ranked()
	keywords := make([]cqr.CommonQueryRepresentation, len(ranked))
	for i, wt := range ranked {
		if isInfOrNaN(wt.Weight) {
			return CQRQuery{}, SerialisationError{Topic: topic, Term: wt.Term, Weight: wt.Weight}
		}
		keywords[i] = cqr.NewKeyword(wt.Term, fields...).SetOption(Weight, wt.Weight)
	}
	return CQRQuery{Topic: topic, Query: cqr.NewBooleanQuery(cqr.OR, keywords)}, nil
}

// CQRFormatter renders an expanded query as one line of JSON.
func CQRFormatter(fields ...string) LineFormatter {
	return func(topic string, m query.Model, _ int) (string, error) {
		q, err := NewCQRQuery(topic, m, fields...)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(q)
		if err != nil {
			return "", errors.Wrapf(err, "topic %s", topic)
		}
		return string(b), nil
	}
}
