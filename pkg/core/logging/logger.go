// ============================================================================
// kurswerk - Course Catalog Prerequisite Extractor
// ============================================================================
//
// Package:     logging
// Description: Structured logger with key-value fields
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package logging

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

// Logger is a structured logger. With* methods return modified copies,
// so a Logger can be shared between goroutines.
type Logger struct {
	name          string
	level         Level
	formatter     Formatter
	output        io.Writer
	correlationID string
	contextFields Fields

	// guards writes to output
	mu *sync.Mutex
}

// Debug logs a debug message with optional key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(LevelDebug, msg, nil, keysAndValues)
}

// Info logs an info message with optional key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log(LevelInfo, msg, nil, keysAndValues)
}

// Warn logs a warning message with optional key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(LevelWarn, msg, nil, keysAndValues)
}

// Error logs an error message with optional key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log(LevelError, msg, nil, keysAndValues)
}

// ErrorWithErr logs an error message together with an error value
func (l *Logger) ErrorWithErr(msg string, err error, keysAndValues ...interface{}) {
	l.log(LevelError, msg, err, keysAndValues)
}

// LogError logs err at a level derived from its severity. Operation and
// details of a coded error become entry fields.
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	level := LevelError
	switch kwerror.GetSeverity(err) {
	case kwerror.SeverityLow:
		level = LevelInfo
	case kwerror.SeverityMedium:
		level = LevelWarn
	}

	code := kwerror.GetCode(err)
	fields := []interface{}{
		"error_code", code.String(),
		"error_category", code.Category(),
	}
	var e *kwerror.Error
	if errors.As(err, &e) {
		if op := e.Operation(); op != "" {
			fields = append(fields, "operation", op)
		}
		for k, v := range e.Details() {
			fields = append(fields, k, v)
		}
	}

	l.log(level, err.Error(), err, fields)
}

// WithLevel returns a copy logging at the given minimum level
func (l *Logger) WithLevel(level Level) *Logger {
	clone := l.clone()
	clone.level = level
	return clone
}

// WithField returns a copy that adds key to every entry
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// WithFields returns a copy that adds fields to every entry
func (l *Logger) WithFields(fields Fields) *Logger {
	clone := l.clone()
	for k, v := range fields {
		clone.contextFields[k] = v
	}
	return clone
}

// WithCorrelationID returns a copy tagging entries with a run id
func (l *Logger) WithCorrelationID(id string) *Logger {
	clone := l.clone()
	clone.correlationID = id
	return clone
}

// Level returns the minimum level
func (l *Logger) Level() Level {
	return l.level
}

// IsLevelEnabled returns true if the given level is enabled
func (l *Logger) IsLevelEnabled(level Level) bool {
	return level.ShouldLog(l.level)
}

func (l *Logger) log(level Level, msg string, err error, keysAndValues []interface{}) {
	if !level.ShouldLog(l.level) {
		return
	}

	entry := &Entry{
		Timestamp:     time.Now(),
		Level:         level,
		Message:       msg,
		Logger:        l.name,
		CorrelationID: l.correlationID,
		Fields:        make(Fields, len(l.contextFields)+len(keysAndValues)/2),
		Error:         err,
	}
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for k, v := range toFields(keysAndValues) {
		entry.Fields[k] = v
	}

	formatted, fmtErr := l.formatter.Format(entry)
	if fmtErr != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(formatted)
}

func (l *Logger) clone() *Logger {
	clone := *l
	clone.contextFields = make(Fields, len(l.contextFields))
	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}
	return &clone
}

// toFields converts key-value pairs to Fields. A trailing key without a
// value and non-string keys are ignored.
func toFields(keysAndValues []interface{}) Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewLogger(LoggerConfig{Output: io.Discard, Level: "error"})
}

func defaultOutput(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}
