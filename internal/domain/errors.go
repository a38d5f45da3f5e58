package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a booking-engine
// failure. The first six kinds are expected business outcomes and are
// returned to callers as-is; KindPersistence is a storage fault and is
// surfaced as a generic failure.
type ErrorKind string

const (
	KindValidation    ErrorKind = "VALIDATION"
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindConflict      ErrorKind = "CONFLICT"
	KindState         ErrorKind = "STATE"
	KindRateLimit     ErrorKind = "RATE_LIMIT"
	KindPriceMismatch ErrorKind = "PRICE_MISMATCH"
	KindPersistence   ErrorKind = "PERSISTENCE"
)

// Error couples a kind with a human-readable reason.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func StateError(format string, args ...any) *Error {
	return &Error{Kind: KindState, Message: fmt.Sprintf(format, args...)}
}

func RateLimitError(format string, args ...any) *Error {
	return &Error{Kind: KindRateLimit, Message: fmt.Sprintf(format, args...)}
}

func PriceMismatchError(format string, args ...any) *Error {
	return &Error{Kind: KindPriceMismatch, Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a storage failure so callers can tell faults
// apart from business rejections.
func PersistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// treated as persistence faults.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
