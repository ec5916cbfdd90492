// ============================================================================
// kurswerk - Course Catalog Prerequisite Extractor
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"sync"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name
	Name string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: "json" or "text" (default: json)
	Format string

	// Destination (default: stderr, stdout carries command output)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "info",
		Format: "json",
	}
}

// NewLogger creates a logger from a configuration
func NewLogger(cfg LoggerConfig) *Logger {
	output := defaultOutput(cfg.Output)

	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	return &Logger{
		name:          cfg.Name,
		level:         ParseLevel(cfg.Level),
		formatter:     GetFormatter(ParseFormat(cfg.Format)),
		output:        output,
		contextFields: make(Fields),
		mu:            &sync.Mutex{},
	}
}

// New creates a logger with the default configuration
func New(name string) *Logger {
	return NewLogger(DefaultLoggerConfig(name))
}
