// Package logging provides the structured application logger and field
// helpers shared across components.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates the application logger at the given level. Production uses JSON
// output; every other environment gets human-readable text. Unrecognised
// levels fall back to info.
func New(level string, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(parseLevel(level))

	if strings.EqualFold(environment, "production") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return logger
}

// WithComponent returns an entry tagged with the owning component, e.g.
// "series_loader" or "forecast_engine".
func WithComponent(logger *logrus.Logger, component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// WithSymbol returns an entry tagged with a ticker symbol.
func WithSymbol(entry *logrus.Entry, symbol string) *logrus.Entry {
	return entry.WithField("symbol", symbol)
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
