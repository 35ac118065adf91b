package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrValidation indicates malformed or invalid caller input.
	// Surfaced as a 4xx response and never retried.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration indicates the deployment is misconfigured.
	// Returned at construction time, e.g. an embedding dimension not divisible by 8.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransientNetwork indicates a connection or timeout class failure.
	// These are the only failures the retry policy retries.
	ErrTransientNetwork = errors.New("transient network error")

	// ErrUpstreamHTTP indicates a collaborator answered with a non-2xx status.
	// Use UpstreamHTTPError to carry the status and body.
	ErrUpstreamHTTP = errors.New("upstream http error")

	// ErrStorage indicates the vector store is unreachable or corrupt.
	ErrStorage = errors.New("storage error")

	// ErrModelUnavailable indicates generation failed after retries.
	// Callers surface this as service unavailable.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrRetriesExhausted indicates every attempt of a retry policy failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrServiceUnavailable indicates an optional collaborator is not configured.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// UpstreamHTTPError is a non-2xx application-level response from a collaborator.
type UpstreamHTTPError struct {
	// Service names the collaborator (e.g. "ollama", "bing").
	Service string

	// StatusCode is the HTTP status returned.
	StatusCode int

	// Body is the (possibly truncated) response body.
	Body string
}

// NewUpstreamHTTPError creates an UpstreamHTTPError, truncating long bodies.
func NewUpstreamHTTPError(service string, statusCode int, body []byte) *UpstreamHTTPError {
	const maxBody = 512
	b := string(body)
	if len(b) > maxBody {
		b = b[:maxBody]
	}
	return &UpstreamHTTPError{Service: service, StatusCode: statusCode, Body: b}
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// Is reports whether target is ErrUpstreamHTTP.
func (e *UpstreamHTTPError) Is(target error) bool {
	return target == ErrUpstreamHTTP
}

// ValidationError wraps a message as an ErrValidation.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ConfigurationError wraps a message as an ErrConfiguration.
func ConfigurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// StorageError wraps err as an ErrStorage.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// ClassifyTransportError maps an error returned by an HTTP client call.
// Connection refused, resets, timeouts and deadline expiry become ErrTransientNetwork.
// Anything else is returned unchanged.
func ClassifyTransportError(service string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return fmt.Errorf("%w: %s: %w", ErrTransientNetwork, service, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %w", ErrTransientNetwork, service, err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %s: %w", ErrTransientNetwork, service, err)
	}

	return err
}

// IsTransient reports whether err is a transient network failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientNetwork)
}
