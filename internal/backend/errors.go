package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrBackendReported wraps an {"error": ...} body returned with a 2xx status.
	ErrBackendReported      = errors.New("backend reported error")
	ErrIncompleteReading    = errors.New("incomplete reading")
	ErrIncompleteStatistics = errors.New("incomplete statistics")
	ErrRelayRejected        = errors.New("relay command rejected")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}
