package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MeasurementFormatter formats per-topic measurements of an expansion run (for instance, how many feedback documents
// were usable for each topic). data is indexed by header, then by topic, so len(data) == len(headers) and
// len(data[i]) == len(topics).
type MeasurementFormatter func(topics, headers []string, data [][]float64) (string, error)

// MeasurementFormatters are the measurement formats selectable by name.
var MeasurementFormatters = map[string]MeasurementFormatter{
	"json": JsonMeasurementFormatter,
	"csv":  CsvMeasurementFormatter,
}

// NewMeasurementFormatter returns the measurement formatter with the given name.
func NewMeasurementFormatter(name string) (MeasurementFormatter, error) {
	if f, ok := MeasurementFormatters[strings.ToLower(name)]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown measurement format %q (supported: csv, json)", name)
}

func checkMeasurements(topics, headers []string, data [][]float64) error {
	if len(data) != len(headers) {
		return fmt.Errorf("%d headers but %d measurements", len(headers), len(data))
	}
	for i := range data {
		if len(data[i]) != len(topics) {
			return fmt.Errorf("measurement %s has %d values for %d topics", headers[i], len(data[i]), len(topics))
		}
	}
	return nil
}

// JsonMeasurementFormatter outputs measurements in a JSON format, keyed by topic then header.
func JsonMeasurementFormatter(topics, headers []string, data [][]float64) (string, error) {
	if err := checkMeasurements(topics, headers, data); err != nil {
		return "", err
	}
	m := map[string]map[string]float64{}
	for j, topic := range topics {
		m[topic] = map[string]float64{}
		for i, header := range headers {
			m[topic][header] = data[i][j]
		}
	}

	v, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// CsvMeasurementFormatter outputs measurements in CSV format, one row per topic in the order given.
func CsvMeasurementFormatter(topics, headers []string, data [][]float64) (string, error) {
	if err := checkMeasurements(topics, headers, data); err != nil {
		return "", err
	}
	b := bytes.NewBufferString("")
	w := csv.NewWriter(b)
	h := []string{"Topic"}
	h = append(h, headers...)
	if err := w.Write(h); err != nil {
		return "", err
	}
	for j, topic := range topics {
		record := make([]string, len(data)+1)
		record[0] = topic
		for i := range data {
			record[i+1] = strconv.FormatFloat(data[i][j], 'f', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}
