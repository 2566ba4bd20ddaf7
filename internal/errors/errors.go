// Package errors provides structured error types for tabular.
// Every error carries a category, code, message and retryable flag so callers
// can branch on the failure kind with errors.Is instead of string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by the layer that raised them.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategorySchema     ErrorCategory = "SCHEMA"
	ErrCategoryType       ErrorCategory = "TYPE"
	ErrCategoryCodec      ErrorCategory = "CODEC"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeCardinality     = "CARDINALITY"
	CodeColumnNotFound  = "COLUMN_NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// Schema codes
	CodeSchemaMismatch   = "SCHEMA_MISMATCH"
	CodeRowArityMismatch = "ROW_ARITY_MISMATCH"

	// Type codes
	CodeCoercionFailed = "COERCION_FAILED"

	// Codec codes
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeEmptySource       = "EMPTY_SOURCE"

	// Storage codes
	CodeUploadFailed   = "UPLOAD_FAILED"
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeDeleteFailed   = "DELETE_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// Sentinels for errors.Is checks. Matching compares category and code only,
// so any error built with the same pair matches its sentinel.
var (
	ErrSchemaMismatch    = New(ErrCategorySchema, CodeSchemaMismatch, "column lists differ")
	ErrRowArityMismatch  = New(ErrCategorySchema, CodeRowArityMismatch, "row length does not match column count")
	ErrCoercion          = New(ErrCategoryType, CodeCoercionFailed, "value cannot be coerced")
	ErrUnsupportedFormat = New(ErrCategoryCodec, CodeUnsupportedFormat, "unsupported format")
	ErrCardinality       = New(ErrCategoryValidation, CodeCardinality, "row count precondition failed")
	ErrEmptySource       = New(ErrCategoryCodec, CodeEmptySource, "no input produced a table")
	ErrColumnNotFound    = New(ErrCategoryValidation, CodeColumnNotFound, "column not found")
	ErrInvalidArgument   = New(ErrCategoryValidation, CodeInvalidArgument, "invalid argument")
	ErrObjectNotFound    = New(ErrCategoryStorage, CodeObjectNotFound, "object not found")
)

// TableError is the structured error type used throughout the module.
type TableError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *TableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *TableError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *TableError) Is(target error) bool {
	var t *TableError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new TableError.
func New(category ErrorCategory, code, message string) *TableError {
	return &TableError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Newf creates a new TableError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *TableError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new TableError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *TableError {
	return &TableError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *TableError) WithDetails(details map[string]interface{}) *TableError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var te *TableError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not a TableError.
func GetCategory(err error) ErrorCategory {
	var te *TableError
	if errors.As(err, &te) {
		return te.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not a TableError.
func GetCode(err error) string {
	var te *TableError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// Only remote storage transfers are transient; everything else is a data or
// programming error and fails fast.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeUploadFailed:
		return true
	case category == ErrCategoryStorage && code == CodeDownloadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for the error kinds the table and codec raise.

func NewSchemaMismatch(format string, args ...interface{}) *TableError {
	return Newf(ErrCategorySchema, CodeSchemaMismatch, format, args...)
}

func NewRowArityMismatch(got, want int) *TableError {
	return Newf(ErrCategorySchema, CodeRowArityMismatch, "row has %d values, table has %d columns", got, want).
		WithDetails(map[string]interface{}{"got": got, "want": want})
}

func NewCoercionError(message string, cause error) *TableError {
	return Wrap(ErrCategoryType, CodeCoercionFailed, message, cause)
}

func NewUnsupportedFormat(format string, args ...interface{}) *TableError {
	return Newf(ErrCategoryCodec, CodeUnsupportedFormat, format, args...)
}

func NewCardinalityError(format string, args ...interface{}) *TableError {
	return Newf(ErrCategoryValidation, CodeCardinality, format, args...)
}

func NewEmptySource(message string) *TableError {
	return New(ErrCategoryCodec, CodeEmptySource, message)
}

func NewColumnNotFound(column interface{}) *TableError {
	return Newf(ErrCategoryValidation, CodeColumnNotFound, "column %v not found", column)
}

func NewInvalidArgument(format string, args ...interface{}) *TableError {
	return Newf(ErrCategoryValidation, CodeInvalidArgument, format, args...)
}

func NewStorageError(code, message string, cause error) *TableError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewInternalError(message string, cause error) *TableError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
