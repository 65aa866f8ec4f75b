package updates

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/rively/internal/pipeline"
)

// Domain errors for company update operations.
var (
	ErrNotFound     = errors.New("company update not found")
	ErrDuplicate    = errors.New("company update already ingested")
	ErrNotUseful    = errors.New("update is not useful for product manager")
	ErrEmptyBatch   = errors.New("batch contains no updates")
	ErrBodyTooLarge = errors.New("request body too large")
)

// MapHTTPStatus maps company update domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNotUseful) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrEmptyBatch) || errors.Is(err, pipeline.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
