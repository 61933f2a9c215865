package llamadash

import (
	"errors"
	"fmt"
)

// Sentinel errors for the proxy domain.
var (
	// ErrUpstream covers network failures and non-2xx responses from the origin.
	ErrUpstream = errors.New("upstream unavailable")
	// ErrNotFound reports that a storage lookup found no row for the key.
	// Backends translate it into a cache miss.
	ErrNotFound = errors.New("not found")
)

// UpstreamError describes a failed origin request.
// StatusCode is 0 when the request never produced a response.
type UpstreamError struct {
	URL        string
	StatusCode int
	Reason     string
}

// Error returns the URL, status and reason of the failure.
func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream %s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("upstream %s: HTTP %d: %s", e.URL, e.StatusCode, e.Reason)
}

// Unwrap lets errors.Is match ErrUpstream.
func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// HTTPStatus returns the origin status code (0 for transport failures).
func (e *UpstreamError) HTTPStatus() int { return e.StatusCode }
