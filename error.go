package twin

import (
	"errors"
	"fmt"
	"strings"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrNotImplemented
	ErrForbidden
	ErrRateLimited
	ErrInternalServerError
	ErrUpstream
	ErrStreamProtocol
	ErrStreamTerminated
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrNotImplemented:
		return "not implemented"
	case ErrForbidden:
		return "forbidden"
	case ErrRateLimited:
		return "rate limited"
	case ErrInternalServerError:
		return "internal server error"
	case ErrUpstream:
		return "upstream error"
	case ErrStreamProtocol:
		return "malformed stream frame"
	case ErrStreamTerminated:
		return "stream ended unexpectedly"
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// Detail returns the error text without the leading error code, which is the
// part of the error suitable to show to a user
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var code Err
	if errors.As(err, &code) {
		if detail := strings.TrimPrefix(err.Error(), code.Error()+": "); detail != "" {
			return detail
		}
	}
	return err.Error()
}
