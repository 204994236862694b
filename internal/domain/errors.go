package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable identifier carried by every domain failure.
type ErrorCode string

const (
	// CodeNetwork marks a remote source that was unreachable or rejected the call.
	CodeNetwork ErrorCode = "NETWORK_ERROR"
	// CodeStorage marks a local read, write or serialization failure.
	CodeStorage ErrorCode = "STORAGE_ERROR"
	// CodeValidation marks a snapshot or input that violates domain invariants.
	CodeValidation ErrorCode = "VALIDATION_ERROR"
)

var errorMessages = map[ErrorCode]string{
	CodeNetwork:    "Network request failed",
	CodeStorage:    "Storage operation failed",
	CodeValidation: "Validation failed",
}

// Error is a failure value with a human-readable message, a stable code and
// an optional underlying cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewNetworkError returns a NETWORK_ERROR failure.
func NewNetworkError(msg string, cause error) *Error {
	return &Error{Code: CodeNetwork, Message: msg, Cause: cause}
}

// NewStorageError returns a STORAGE_ERROR failure.
func NewStorageError(msg string, cause error) *Error {
	return &Error{Code: CodeStorage, Message: msg, Cause: cause}
}

// NewValidationError returns a VALIDATION_ERROR failure.
func NewValidationError(msg string, cause error) *Error {
	return &Error{Code: CodeValidation, Message: msg, Cause: cause}
}

// CodeOf returns the code of the first domain Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

func defaultMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return string(code)
}
