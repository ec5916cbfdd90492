// ============================================================================
// kurswerk - Course Catalog Prerequisite Extractor
// ============================================================================
//
// Package:     error
// Description: Error severity levels
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow: bad input, the run can go on
	SeverityLow Severity = iota

	// SeverityMedium: one operation failed, retrying may help
	SeverityMedium

	// SeverityHigh: the run cannot produce output
	SeverityHigh

	// SeverityCritical: stored data may be inconsistent
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode determines appropriate severity level based on error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeDatabaseError, CodeStorageError, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh
	case CodeNetworkError, CodeExternalServiceError, CodeCanceled:
		return SeverityMedium
	case CodeInvalidInput, CodeNotFound, CodeInvalidFormat:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
