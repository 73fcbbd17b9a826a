package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a missing user, exercise or stored file.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument marks caller input that failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorage marks any failure inside the persistence layer.
	ErrStorage = errors.New("storage error")
	// ErrRateLimited marks a request rejected by a limiter.
	ErrRateLimited = errors.New("rate limited")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// ValidationError names the offending field. It unwraps to ErrInvalidArgument.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a persistence failure so it classifies as ErrStorage while
// keeping the cause for logs.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Classify maps an error onto an HTTP status and code.
func Classify(err error) (int, string) {
	var apiErr *Error
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &apiErr) && apiErr.Status != 0:
		code := apiErr.Code
		if code == "" {
			code = http.StatusText(apiErr.Status)
		}
		return apiErr.Status, code
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, ErrStorage):
		return http.StatusInternalServerError, "storage_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
