// Package logging builds the process logger and holds the field names used
// across the ingestion pipeline.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Standard structured field names.
const (
	FieldBank           = "bank"
	FieldCategory       = "category"
	FieldFileName       = "file_name"
	FieldFormat         = "format"
	FieldChunk          = "chunk"
	FieldRow            = "row"
	FieldRows           = "rows"
	FieldField          = "field"
	FieldSubmissionID   = "submission_id"
	FieldCount          = "count"
	FieldSuccessful     = "successful"
	FieldFailed         = "failed"
	FieldMissingHeaders = "missing_headers"
	FieldHeaders        = "headers"
)

// New returns a logrus logger with the given level and format ("text" or "json").
// An unknown level falls back to info.
func New(level, format string) *logrus.Logger {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warnf("invalid log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Discard returns a logger that drops everything. Used by tests and as a
// fallback when a component is built without one.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}
