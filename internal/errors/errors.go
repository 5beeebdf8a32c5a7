package errors

import (
	stderrors "errors"
	"fmt"
)

// SearchError is the structured error type for sitesearch.
// It carries enough context for logging and for CLI presentation.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_402_MALFORMED_RECORD").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a SearchError with the same code.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SearchError) WithSuggestion(suggestion string) *SearchError {
	e.Suggestion = suggestion
	return e
}

// New creates a new SearchError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SearchError from an existing error.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// Sentinel values usable with errors.Is, matched by code.
var (
	ErrMalformedRecord   = &SearchError{Code: ErrCodeMalformedRecord}
	ErrDuplicateID       = &SearchError{Code: ErrCodeDuplicateID}
	ErrDanglingReference = &SearchError{Code: ErrCodeDanglingReference}
	ErrIndexMismatch     = &SearchError{Code: ErrCodeIndexMismatch}
	ErrConfigInvalid     = &SearchError{Code: ErrCodeConfigInvalid}
)

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SearchError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// MalformedRecord reports a post record that cannot be registered.
// position is the record's zero-based position in the source list.
func MalformedRecord(position int, field string) *SearchError {
	return New(ErrCodeMalformedRecord,
		fmt.Sprintf("record %d: missing required field %q", position, field), nil).
		WithDetail("position", fmt.Sprint(position)).
		WithDetail("field", field)
}

// DuplicateID reports two records sharing the same reference id.
func DuplicateID(id int) *SearchError {
	return New(ErrCodeDuplicateID, fmt.Sprintf("duplicate post id %d", id), nil).
		WithDetail("id", fmt.Sprint(id))
}

// DanglingReference reports an index hit with no matching store entry.
func DanglingReference(ref int) *SearchError {
	return New(ErrCodeDanglingReference,
		fmt.Sprintf("index reference %d has no document in the store", ref), nil).
		WithDetail("ref", fmt.Sprint(ref))
}

// GetCode extracts the error code from a SearchError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from a SearchError anywhere in the chain.
func GetCategory(err error) Category {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Category
	}
	return ""
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return false
}
