package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNilUserInfo  = errors.New("user info cannot be nil")
)

// FetchErrorKind tags the failure variants of a user info fetch
type FetchErrorKind int

const (
	// KindFault is a network, encoding or other unexpected failure
	KindFault FetchErrorKind = iota

	// KindStatus is a response with a status other than 200
	KindStatus

	// KindParse is a response body that does not have the expected structure
	KindParse
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindFault:
		return "fault"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchError is the failure result of a user info fetch.
// Callers switch on Kind; StatusCode and Body are only set for KindStatus.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Body       string
	Err        error
}

// Error returns the error message
func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("unexpected status code %d", e.StatusCode)
	case KindParse:
		if e.Err != nil {
			return "malformed user info response: " + e.Err.Error()
		}
		return "malformed user info response"
	default:
		if e.Err != nil {
			return "user info request failed: " + e.Err.Error()
		}
		return "user info request failed"
	}
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFaultError creates a fetch error for an unexpected failure
func NewFaultError(err error) *FetchError {
	return &FetchError{Kind: KindFault, Err: err}
}

// NewStatusError creates a fetch error for an unsuccessful HTTP status
func NewStatusError(statusCode int, body string) *FetchError {
	return &FetchError{Kind: KindStatus, StatusCode: statusCode, Body: body}
}

// NewParseError creates a fetch error for a malformed payload
func NewParseError(err error) *FetchError {
	return &FetchError{Kind: KindParse, Err: err}
}

// KindOf returns the kind of a fetch error.
// Errors that are not fetch errors are reported as KindFault.
func KindOf(err error) (FetchErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return KindFault, false
}
