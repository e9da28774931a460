package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TransportError is returned when an exchange produced no usable response
type TransportError struct {
	Err error
}

// ErrorKind classifies a non-success response
type ErrorKind int

// ApplicationError is returned for a response with a non-success status
type ApplicationError struct {
	Status int
	Kind   ErrorKind
	Detail string // Safe to show to the user
	body   string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindValidation
	KindServer
)

const (
	serverErrorDetail = "The service is temporarily unavailable. Please try again later."
	maxErrorBody      = 64 * 1024
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// newApplicationError classifies a response status and body
func newApplicationError(status int, body []byte) *ApplicationError {
	err := &ApplicationError{
		Status: status,
		Kind:   kindOf(status),
		body:   string(body),
	}
	if err.Kind == KindServer {
		err.Detail = serverErrorDetail
	} else {
		err.Detail = detailOf(body)
	}
	if err.Detail == "" {
		err.Detail = http.StatusText(status)
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *TransportError) Error() string {
	return fmt.Sprint("transport error: ", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
}

// Body returns the raw response body, which may contain server internals
// and is meant for logs only
func (e *ApplicationError) Body() string {
	return e.body
}

// Is matches the equivalent service error, so callers can test with
// errors.Is(err, twin.ErrRateLimited)
func (e *ApplicationError) Is(target error) bool {
	switch e.Kind {
	case KindRateLimited:
		return target == twin.ErrRateLimited
	case KindValidation:
		return target == twin.ErrBadParameter
	case KindServer:
		return target == twin.ErrInternalServerError
	}
	return false
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func kindOf(status int) ErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return KindUnknown
	}
}

// detailOf extracts the detail, then the message field of a JSON error
// body, falling back to the body text
func detailOf(body []byte) string {
	var response schema.ErrorResponse
	if err := json.Unmarshal(body, &response); err == nil {
		if reason := response.Reason(); reason != "" {
			return reason
		}
	}
	return strings.TrimSpace(string(body))
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindValidation:
		return "validation error"
	case KindServer:
		return "server error"
	default:
		return "unknown error"
	}
}
