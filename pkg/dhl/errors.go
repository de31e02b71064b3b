package dhl

import (
	"errors"
	"fmt"
	"strings"
)

// APIError represents an error returned by the DHL Express API.
// It wraps one of the sentinel errors below so callers can classify
// failures with errors.Is while still seeing the remote diagnostics.
type APIError struct {
	Operation  string   // "address-validate", "shipment-create", ...
	Code       string   // remote error code or "HTTP_<status>"
	Message    string   // remote error message
	Details    []string // additionalDetails from the response body
	StatusCode int
	Retryable  bool
	Kind       error // sentinel: ErrInvalidAddress, ErrShipmentNotFound, ...
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("dhl %s (%s): %s", e.Operation, e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return msg
}

// Unwrap returns the sentinel error this API error maps to.
func (e *APIError) Unwrap() error {
	return e.Kind
}

// NewAPIError creates a new APIError classified under the given sentinel.
func NewAPIError(operation, code, message string, kind error) *APIError {
	return &APIError{
		Operation: operation,
		Code:      code,
		Message:   message,
		Kind:      kind,
	}
}

// WithStatusCode adds an HTTP status code to the error.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithDetails adds remote detail strings to the error.
func (e *APIError) WithDetails(details ...string) *APIError {
	e.Details = append(e.Details, details...)
	return e
}

// WithRetryable marks the error as retryable.
func (e *APIError) WithRetryable(retryable bool) *APIError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for the failure modes of the DHL Express API.
var (
	// ErrMissingCredentials indicates the client was constructed without
	// an API key or secret.
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrAuthenticationFailed indicates the remote API rejected the
	// configured credentials.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidAddress indicates the address failed remote validation.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrShipmentRejected indicates shipment creation was refused by a
	// business rule (bad address, unsupported product, missing field).
	ErrShipmentRejected = errors.New("shipment rejected")

	// ErrShipmentNotFound indicates the shipment ID is unknown to the API.
	ErrShipmentNotFound = errors.New("shipment not found")

	// ErrProofNotAvailable indicates no proof of delivery exists yet.
	ErrProofNotAvailable = errors.New("proof of delivery not available")

	// ErrNetwork indicates a transport-level failure: connection refused,
	// timeout, or a response body that could not be decoded.
	ErrNetwork = errors.New("network failure")

	// ErrServiceUnavailable indicates the remote API is temporarily down.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates the remote API throttled the request.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// IsRetryable returns true if the error is worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrRateLimitExceeded)
}
