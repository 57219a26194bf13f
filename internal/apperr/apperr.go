// Package apperr defines the error kind taxonomy shared by the
// service layer and the HTTP boundary. Services construct errors
// close to the point of detection; handlers translate the kind into
// an HTTP status and never leak internal detail for unexpected
// failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for boundary translation. Business-rule
// violations map to 400, authentication failures to 401, missing
// resources to 404 and everything unexpected to 500.
type Kind string

const (
	// Business-rule violations. Reported to the caller, never retried.
	KindMissingField       Kind = "MISSING_FIELD"
	KindInvalidDuration    Kind = "INVALID_DURATION"
	KindTooShort           Kind = "TOO_SHORT"
	KindSchedulingConflict Kind = "SCHEDULING_CONFLICT"
	KindEmailAlreadyExists Kind = "EMAIL_ALREADY_EXISTS"
	KindGroupNameExists    Kind = "GROUP_NAME_EXISTS"
	KindValidation         Kind = "VALIDATION"

	// Authentication failures. Terminal for the request.
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUserNotFound       Kind = "USER_NOT_FOUND"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindTokenExpired       Kind = "TOKEN_EXPIRED"
	KindWrongTokenType     Kind = "WRONG_TOKEN_TYPE"
	KindInvalidToken       Kind = "INVALID_TOKEN"

	// Missing domain resources (events, groups, tags).
	KindNotFound Kind = "NOT_FOUND"

	// Anything unanticipated: storage failures, codec failures outside
	// the known token error set. Logged with full context, reported as
	// an opaque failure.
	KindInternal Kind = "INTERNAL"
)

// Error carries a kind and a caller-facing message. For KindInternal
// the wrapped cause is kept for logging but the message shown to the
// caller is always opaque.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error of the given kind with a caller-facing message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The cause is preserved for
// logs; callers only ever see "internal server error".
func Internal(cause error) error {
	return &Error{Kind: KindInternal, Message: "internal server error", cause: cause}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// errors that did not originate in this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-facing message for err. Unclassified
// errors are reported opaquely.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to the HTTP status class the boundary
// layer should answer with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingField, KindInvalidDuration, KindTooShort,
		KindSchedulingConflict, KindEmailAlreadyExists,
		KindGroupNameExists, KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUserNotFound, KindUnauthorized,
		KindTokenExpired, KindWrongTokenType, KindInvalidToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
