package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across domain packages.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps a domain error to the failure envelope. Lookups that
// miss surface as 404; malformed input as 422; everything else as 500 with
// the raw error message, never masked.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, err.Error())
	}
}
