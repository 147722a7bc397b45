package client

import "fmt"

// NetworkError wraps transport-level failures: DNS, refused connections,
// context deadlines. The request never produced a backend response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx backend response.
type ServerError struct {
	Op         string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
}
