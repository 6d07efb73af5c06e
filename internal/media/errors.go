package media

import (
	"errors"
	"net/http"

	"photo-gallery/internal/transcoder"
)

var (
	// ErrNotFound means the requested image has no record or its file is gone.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest means the request identity failed validation.
	ErrBadRequest = errors.New("bad request")
)

// HTTPStatus maps a thumbnail or download error to a response status.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, transcoder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, transcoder.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
