package gnews

import "fmt"

// UpstreamError reports a GNews API response that could not be used: a
// non-2xx status, or a 2xx body that failed to decode (Parse is set).
type UpstreamError struct {
	StatusCode int
	Message    string
	Parse      bool
}

func (e *UpstreamError) Error() string {
	if e.Parse {
		return fmt.Sprintf("gnews: unparseable response (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gnews: upstream status %d: %s", e.StatusCode, e.Message)
}

// NetworkError reports a transport-level failure: connection refused, DNS
// failure, or a request that exceeded the client timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("gnews: request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
