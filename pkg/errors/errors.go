package errors

import (
	"errors"
	"net/http"
	"strings"
)

// Error kinds. Every domain failure wraps exactly one of these so the
// HTTP layer can map it to a status code with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
)

// HTTPStatusFromError maps an error kind to its HTTP status code.
func HTTPStatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the human-readable part of a kinded error, without
// the kind prefix.
func Reason(err error) string {
	msg := err.Error()
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrInvalidOperation, ErrConflict} {
		prefix := kind.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
