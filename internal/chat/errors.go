package chat

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is against the typed failures below.
var (
	ErrTransport         = errors.New("transport failure")
	ErrService           = errors.New("service failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{ErrTransport, e.Err} }

// ServiceError is a reachable service answering with a non-2xx status.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error: http %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: http %d: %s", e.StatusCode, e.Detail)
}

func (e *ServiceError) Unwrap() error { return ErrService }

// MalformedResponseError is a 2xx response whose body carries no usable reply.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedResponse}
	}
	return []error{ErrMalformedResponse, e.Err}
}

// ErrorKind names the failure class for logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrService):
		return "service"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "unknown"
	}
}
