package resource

import (
	"errors"
	"fmt"
)

// ErrAlreadyResolved is returned when a descriptor's content is set twice
var ErrAlreadyResolved = errors.New("resource content already resolved")

// FetchError reports a transport or path resolution failure
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WorkerStartupError reports a worker that failed before signalling readiness
type WorkerStartupError struct {
	Scheme Scheme
	Err    error
}

func (e *WorkerStartupError) Error() string {
	return fmt.Sprintf("%s worker failed to start: %v", e.Scheme, e.Err)
}

func (e *WorkerStartupError) Unwrap() error { return e.Err }

// WorkerTransportError reports a worker whose channel broke before replying
type WorkerTransportError struct {
	Scheme Scheme
	Err    error
}

func (e *WorkerTransportError) Error() string {
	return fmt.Sprintf("%s worker transport failed: %v", e.Scheme, e.Err)
}

func (e *WorkerTransportError) Unwrap() error { return e.Err }

// DecompressionError reports input the worker could not decode
type DecompressionError struct {
	Scheme  Scheme
	Path    string
	Message string
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("%s decompression failed for %s: %s", e.Scheme, e.Path, e.Message)
}

// UnknownResourceTypeError reports an unrecognized resource type
type UnknownResourceTypeError struct {
	Type string
}

func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("unknown resource type: %s", e.Type)
}

// UnknownCompressionSchemeError reports an unrecognized compression scheme
type UnknownCompressionSchemeError struct {
	Scheme string
}

func (e *UnknownCompressionSchemeError) Error() string {
	return fmt.Sprintf("unknown compression type: %s", e.Scheme)
}

// Kind returns a short label for an error in the taxonomy, used as a metric label
func Kind(err error) string {
	var (
		fetchErr     *FetchError
		startupErr   *WorkerStartupError
		transportErr *WorkerTransportError
		decodeErr    *DecompressionError
		typeErr      *UnknownResourceTypeError
		schemeErr    *UnknownCompressionSchemeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &startupErr):
		return "worker_startup"
	case errors.As(err, &transportErr):
		return "worker_transport"
	case errors.As(err, &decodeErr):
		return "decompression"
	case errors.As(err, &typeErr):
		return "unknown_type"
	case errors.As(err, &schemeErr):
		return "unknown_scheme"
	default:
		return "other"
	}
}
