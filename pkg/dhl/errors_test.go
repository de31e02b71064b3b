package dhl_test

import (
	"errors"
	"testing"

	"github.com/delivro/dhlexpress/pkg/dhl"
	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := dhl.NewAPIError("address-validate", "HTTP_400", "Invalid postal code", dhl.ErrInvalidAddress)
	assert.Equal(t, "dhl address-validate (HTTP_400): Invalid postal code", err.Error())
}

func TestAPIError_ErrorWithDetails(t *testing.T) {
	err := dhl.NewAPIError("shipment-create", "7002", "Validation failure", dhl.ErrShipmentRejected).
		WithDetails("content.packages is required", "accounts is required")
	assert.Contains(t, err.Error(), "Validation failure")
	assert.Contains(t, err.Error(), "content.packages is required")
	assert.Contains(t, err.Error(), "accounts is required")
}

func TestAPIError_Unwrap(t *testing.T) {
	err := dhl.NewAPIError("shipment-tracking", "HTTP_404", "No shipment found", dhl.ErrShipmentNotFound)
	assert.True(t, errors.Is(err, dhl.ErrShipmentNotFound))
	assert.False(t, errors.Is(err, dhl.ErrAuthenticationFailed))
}

func TestAPIError_WithStatusCode(t *testing.T) {
	err := dhl.NewAPIError("shipment-create", "HTTP_401", "Unauthorized", dhl.ErrAuthenticationFailed).
		WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestIsRetryable_APIError(t *testing.T) {
	err := dhl.NewAPIError("shipment-create", "HTTP_429", "Too many requests", dhl.ErrRateLimitExceeded).
		WithRetryable(true)
	assert.True(t, dhl.IsRetryable(err))
}

func TestIsRetryable_APIErrorNotRetryable(t *testing.T) {
	err := dhl.NewAPIError("address-validate", "HTTP_400", "Bad address", dhl.ErrInvalidAddress)
	assert.False(t, dhl.IsRetryable(err))
}

func TestIsRetryable_Sentinels(t *testing.T) {
	assert.True(t, dhl.IsRetryable(dhl.ErrNetwork))
	assert.True(t, dhl.IsRetryable(dhl.ErrServiceUnavailable))
	assert.True(t, dhl.IsRetryable(dhl.ErrRateLimitExceeded))
	assert.False(t, dhl.IsRetryable(dhl.ErrInvalidAddress))
	assert.False(t, dhl.IsRetryable(dhl.ErrMissingCredentials))
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrMissingCredentials", dhl.ErrMissingCredentials},
		{"ErrAuthenticationFailed", dhl.ErrAuthenticationFailed},
		{"ErrInvalidAddress", dhl.ErrInvalidAddress},
		{"ErrShipmentRejected", dhl.ErrShipmentRejected},
		{"ErrShipmentNotFound", dhl.ErrShipmentNotFound},
		{"ErrProofNotAvailable", dhl.ErrProofNotAvailable},
		{"ErrNetwork", dhl.ErrNetwork},
		{"ErrServiceUnavailable", dhl.ErrServiceUnavailable},
		{"ErrRateLimitExceeded", dhl.ErrRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
