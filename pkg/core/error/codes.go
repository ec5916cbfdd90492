// ============================================================================
// kurswerk - Course Catalog Prerequisite Extractor
// ============================================================================
//
// Package:     error
// Description: Error codes used across kurswerk
// Author:      Mike Stoffels
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeCanceled     Code = "CANCELED"

	// Storage
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeStorageError  Code = "STORAGE_ERROR"

	// Catalog access
	CodeNetworkError         Code = "NETWORK_ERROR"
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidFormat        Code = "INVALID_FORMAT"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeDatabaseError, CodeStorageError:
		return "storage"
	case CodeNetworkError, CodeExternalServiceError, CodeInvalidFormat:
		return "catalog"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}
