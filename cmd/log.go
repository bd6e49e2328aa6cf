package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// NewLogger creates the logger of a command. Verbose loggers are human readable and include debug messages; otherwise
// messages are structured JSON.
func NewLogger(verbose bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// FormatDuration formats d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	s := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
