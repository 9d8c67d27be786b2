package contract

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a registry error to the status code reported to callers.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAlreadyInitialized), errors.Is(err, ErrNotInitialized):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
