package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt operations.
var (
	ErrNotFound        = errors.New("prompt not found")
	ErrInvalidID       = errors.New("prompt id must be a uuid")
	ErrDuplicate       = errors.New("prompt name already exists")
	ErrInvalidStage    = errors.New("stage must be classify, dispatch, or synthesize")
	ErrInvalidTemplate = errors.New("instructions are not a valid template")
	ErrRender          = errors.New("prompt render failed")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidStage) || errors.Is(err, ErrInvalidTemplate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
