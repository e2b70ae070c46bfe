package domain

import (
	"errors"
	"fmt"
)

// Parse error codes for the VCF extraction call. All three are fatal to the
// extraction; individual malformed data lines are counted and skipped instead.
const (
	ErrCodeEmptyInput       = "EMPTY_INPUT"
	ErrCodeMissingHeader    = "MISSING_HEADER"
	ErrCodeTooManyMalformed = "TOO_MANY_MALFORMED_LINES"
)

// ParseError represents a fatal VCF parse failure with a stable code that the
// HTTP layer maps to a client-error status.
type ParseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewParseError creates a ParseError with a formatted message.
func NewParseError(code, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ParseErrorCode extracts the parse error code from err, or "" if err is not
// a ParseError.
func ParseErrorCode(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
