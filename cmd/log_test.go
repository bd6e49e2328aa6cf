package cmd_test

import (
	"testing"
	"time"

	"github.com/hscells/prf/cmd"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "00:00:00"},
		{1500 * time.Millisecond, "00:00:02"},
		{61 * time.Second, "00:01:01"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "26:03:04"},
	}
	for _, test := range tests {
		if s := cmd.FormatDuration(test.d); s != test.expected {
			t.Errorf("%v: expected %s, got %s", test.d, test.expected, s)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		log, err := cmd.NewLogger(verbose)
		if err != nil {
			t.Fatal(err)
		}
		log.Debugw("testing", "verbose", verbose)
	}
}
