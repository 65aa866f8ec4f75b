package audit

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("audit target not found")
	ErrInvalidTarget = errors.New("invalid audit target")
)

// MapHTTPStatus maps audit errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidTarget) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
