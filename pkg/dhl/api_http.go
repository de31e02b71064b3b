package dhl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Fixed MyDHL API endpoints.
const (
	ProductionBaseURL = "https://express.api.dhl.com/mydhlapi"
	TestBaseURL       = "https://express.api.dhl.com/mydhlapi/test"
)

// HTTPAPIClient is the production implementation of APIClient using HTTP.
type HTTPAPIClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPAPIClient{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateAddress validates an address via GET /address-validate.
func (c *HTTPAPIClient) ValidateAddress(ctx context.Context, params *AddressValidateParams) (*AddressValidateResponse, error) {
	const op = "address-validate"

	resp, err := c.doRequest(ctx, op, http.MethodGet, "/address-validate", params.Values(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(op, resp, ErrInvalidAddress)
	}

	var result AddressValidateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(op, err)
	}
	return &result, nil
}

// CreateShipment creates a new shipment via POST /shipments.
func (c *HTTPAPIClient) CreateShipment(ctx context.Context, req *ShipmentCreateRequest) (*ShipmentCreateResponse, error) {
	const op = "shipment-create"

	resp, err := c.doRequest(ctx, op, http.MethodPost, "/shipments", nil, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(op, resp, ErrShipmentRejected)
	}

	var result ShipmentCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(op, err)
	}
	return &result, nil
}

// GetTracking retrieves tracking info via GET /shipments/{id}/tracking.
func (c *HTTPAPIClient) GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error) {
	const op = "shipment-tracking"

	path := fmt.Sprintf("/shipments/%s/tracking", url.PathEscape(shipmentID))
	resp, err := c.doRequest(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(op, resp, ErrShipmentNotFound)
	}

	var result TrackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(op, err)
	}
	return &result, nil
}

// GetProofOfDelivery retrieves POD documents via
// GET /shipments/{id}/proof-of-delivery.
func (c *HTTPAPIClient) GetProofOfDelivery(ctx context.Context, shipmentID string) (*ProofResponse, error) {
	const op = "shipment-proof"

	path := fmt.Sprintf("/shipments/%s/proof-of-delivery", url.PathEscape(shipmentID))
	resp, err := c.doRequest(ctx, op, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(op, resp, ErrShipmentNotFound)
	}

	var result ProofResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, decodeError(op, err)
	}
	return &result, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

// doRequest performs an HTTP request with JSON headers and Basic auth.
// Each call computes the Authorization header from the stored credentials
// and attaches a fresh Message-Reference for remote-side correlation.
func (c *HTTPAPIClient) doRequest(ctx context.Context, op, method, path string, query url.Values, body any) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// MyDHL uses Basic Auth with key:secret
	auth := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":" + c.apiSecret))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Message-Reference", uuid.New().String())
	req.Header.Set("User-Agent", "delivro-dhlexpress/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewAPIError(op, "TRANSPORT", err.Error(), ErrNetwork).WithRetryable(true)
	}
	return resp, nil
}

// apiErrorBody is the RFC 7807-style error shape the MyDHL API returns.
type apiErrorBody struct {
	Title             string   `json:"title"`
	Detail            string   `json:"detail"`
	Message           string   `json:"message"`
	Instance          string   `json:"instance"`
	Status            int      `json:"status"`
	AdditionalDetails []string `json:"additionalDetails"`
}

// parseError maps an error response onto the sentinel taxonomy.
// rejected is the sentinel for a business-rule refusal on this endpoint.
func (c *HTTPAPIClient) parseError(op string, resp *http.Response, rejected error) error {
	body, _ := io.ReadAll(resp.Body)

	kind := rejected
	retryable := false
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = ErrAuthenticationFailed
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = ErrRateLimitExceeded
		retryable = true
	case resp.StatusCode >= http.StatusInternalServerError:
		kind = ErrServiceUnavailable
		retryable = true
	}

	code := fmt.Sprintf("HTTP_%d", resp.StatusCode)
	message := string(body)
	var details []string

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			message = parsed.Detail
		} else if parsed.Message != "" {
			message = parsed.Message
		}
		if parsed.Title != "" {
			code = parsed.Title
		}
		details = parsed.AdditionalDetails
	}

	return NewAPIError(op, code, message, kind).
		WithStatusCode(resp.StatusCode).
		WithDetails(details...).
		WithRetryable(retryable)
}

// decodeError wraps a malformed-response failure as a network error.
func decodeError(op string, err error) error {
	return NewAPIError(op, "DECODE", "failed to decode response: "+err.Error(), ErrNetwork)
}

var _ APIClient = (*HTTPAPIClient)(nil)
