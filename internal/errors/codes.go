// Package errors provides structured error handling for sitesearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (post files, telemetry database)
//   - 4XX: Validation errors (records, queries)
//   - 5XX: Internal errors (index, search, integrity)
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileUnreadable = "ERR_202_FILE_UNREADABLE"
	ErrCodeFileCorrupt    = "ERR_206_FILE_CORRUPT"
	ErrCodeTelemetryStore = "ERR_207_TELEMETRY_STORE"

	// Validation errors (400-499)
	ErrCodeInvalidInput    = "ERR_401_INVALID_INPUT"
	ErrCodeMalformedRecord = "ERR_402_MALFORMED_RECORD"
	ErrCodeDuplicateID     = "ERR_403_DUPLICATE_ID"
	ErrCodeUnknownFormat   = "ERR_404_UNKNOWN_FORMAT"

	// Internal errors (500-599)
	ErrCodeInternal          = "ERR_501_INTERNAL"
	ErrCodeDanglingReference = "ERR_502_DANGLING_REFERENCE"
	ErrCodeSearchFailed      = "ERR_503_SEARCH_FAILED"
	ErrCodeIndexMismatch     = "ERR_504_INDEX_MISMATCH"
	ErrCodeIndexFailed       = "ERR_505_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "402" from "ERR_402_MALFORMED_RECORD"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexMismatch:
		return SeverityFatal
	case ErrCodeDanglingReference:
		// The entry is skipped and the render continues.
		return SeverityWarning
	}
	return SeverityError
}
