package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a follower fetch failure
type Kind string

const (
	KindAccessDenied Kind = "access_denied"
	KindNotFound     Kind = "not_found"
	KindOther        Kind = "other"
)

// Error represents a remote API error with classification
type Error struct {
	Kind    Kind
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies an underlying error
func Wrap(kind Kind, code int, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// FromStatus maps an HTTP status code to an error kind.
// Code 0 means the request never produced a response.
func FromStatus(statusCode int) Kind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAccessDenied
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindOther
	}
}

// KindOf extracts the classification of err. Unclassified errors are KindOther.
func KindOf(err error) Kind {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}

// IsDroppable reports whether a failed account should be dropped for good
// rather than retried on a later run.
func IsDroppable(kind Kind) bool {
	switch kind {
	case KindAccessDenied, KindNotFound:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code is worth retrying
// within a single request
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // network error
		return true
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		// 429 and the remaining 5xx are left to the crawl-level long cooldown
		return false
	}
}

// IsRetryable checks whether err is a classified error with a retryable code
func IsRetryable(err error) bool {
	var apiErr *Error
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindOther && IsRetryableStatusCode(apiErr.Code)
}
