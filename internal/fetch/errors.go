package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCancelled is matched by errors.Is for requests superseded by a newer Get.
var ErrCancelled = errors.New("request cancelled")

// CancelledError reports that a pending Get was superseded before it resolved.
type CancelledError struct {
	URL string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("request cancelled: %s", e.URL)
}

// Is lets errors.Is(err, ErrCancelled) match.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// TransportError reports a non-2xx response.
type TransportError struct {
	URL    string
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch failed: %s returned status %d", e.URL, e.Status)
}

// StatusCode extracts the HTTP status from a TransportError anywhere in the
// chain, or 0 when err carries none.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 TransportError.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
