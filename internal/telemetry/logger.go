// Package telemetry supplies the engine's logging and tracing handles.
//
// Grounded on overlay/node/xatu/service.go (teacher), which stores a
// logger on the service struct and receives it at construction rather
// than reaching for package-level state, and on Design Note §9 ("Global
// mutable tracing state ... pass a lightweight logger handle through the
// engine constructor").
package telemetry

import "github.com/sirupsen/logrus"

// Fields is a shorthand for structured log key-value pairs.
type Fields = logrus.Fields

// Logger is the small logging surface the engine depends on, letting
// callers supply any backend (or none).
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
}

// logrusLogger adapts *logrus.Logger to Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps l as a Logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string, fields Fields) { l.entry.WithFields(fields).Debug(msg) }
func (l *logrusLogger) Info(msg string, fields Fields)  { l.entry.WithFields(fields).Info(msg) }
func (l *logrusLogger) Warn(msg string, fields Fields)  { l.entry.WithFields(fields).Warn(msg) }
func (l *logrusLogger) Error(msg string, fields Fields) { l.entry.WithFields(fields).Error(msg) }

// discardLogger is the fallback used when a caller constructs an Engine
// with a nil Logger.
type discardLogger struct{}

func (discardLogger) Debug(string, Fields) {}
func (discardLogger) Info(string, Fields)  {}
func (discardLogger) Warn(string, Fields)  {}
func (discardLogger) Error(string, Fields) {}

// NewDiscardLogger returns a Logger that drops everything.
func NewDiscardLogger() Logger { return discardLogger{} }
