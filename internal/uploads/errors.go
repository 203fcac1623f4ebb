package uploads

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no video record exists for the requested id.
	ErrNotFound = errors.New("video not found")
	// ErrForbidden indicates the authenticated user does not own the video.
	ErrForbidden = errors.New("not the video owner")
)

// RequestError marks a failure caused by the caller's input: a malformed id,
// a missing file part, an oversized payload, or a disallowed content type.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return e.Reason
}

func badRequestf(format string, args ...any) *RequestError {
	return &RequestError{Reason: fmt.Sprintf(format, args...)}
}
