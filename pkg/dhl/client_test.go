package dhl_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/delivro/dhlexpress/pkg/dhl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *dhl.MockAPIClient) *dhl.Client {
	logger := otelzap.New(zap.NewNop())
	return dhl.NewWithAPIClient(
		dhl.Config{},
		mockClient,
		logger,
		nil,
	)
}

func TestNew_MissingAPIKey(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	_, err := dhl.New(dhl.Config{APISecret: "secret"}, logger, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrMissingCredentials))
}

func TestNew_MissingAPISecret(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	_, err := dhl.New(dhl.Config{APIKey: "key"}, logger, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrMissingCredentials))
}

func TestNew_TestModeRoutesToSandbox(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	client, err := dhl.New(dhl.Config{
		APIKey:    "key",
		APISecret: "secret",
		TestMode:  true,
	}, logger, nil)

	require.NoError(t, err)
	assert.Equal(t, dhl.TestBaseURL, client.BaseURL())
}

func TestNew_ProductionModeRoutesToProduction(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	client, err := dhl.New(dhl.Config{
		APIKey:    "key",
		APISecret: "secret",
	}, logger, nil)

	require.NoError(t, err)
	assert.Equal(t, dhl.ProductionBaseURL, client.BaseURL())
}

func TestNew_UseMockSkipsCredentialCheck(t *testing.T) {
	logger := otelzap.New(zap.NewNop())

	client, err := dhl.New(dhl.Config{UseMock: true}, logger, nil)

	require.NoError(t, err)

	ctx := context.Background()
	resp, err := client.ValidateAddress(ctx, &dhl.AddressValidationRequest{
		CountryCode: "CZ",
		PostalCode:  "14800",
		CityName:    "Prague",
	})

	require.NoError(t, err)
	assert.True(t, resp.Valid)
}

func TestClient_ValidateAddress_Success(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := &dhl.AddressValidationRequest{
		Type:        dhl.AddressDelivery,
		CountryCode: "US",
		PostalCode:  "12345",
		CityName:    "New York",
	}

	ctx := context.Background()
	resp, err := client.ValidateAddress(ctx, req)

	require.NoError(t, err)
	assert.True(t, resp.Valid)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "US", resp.Matches[0].CountryCode)
	assert.Equal(t, "12345", resp.Matches[0].PostalCode)
	assert.NotEmpty(t, resp.Matches[0].ServiceArea.Code)
}

func TestClient_ValidateAddress_ForwardsAllFields(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()

	var gotParams *dhl.AddressValidateParams
	mockAPI.OnValidateAddress = func(ctx context.Context, params *dhl.AddressValidateParams) (*dhl.AddressValidateResponse, error) {
		gotParams = params
		return &dhl.AddressValidateResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.ValidateAddress(ctx, &dhl.AddressValidationRequest{
		Type:             dhl.AddressPickup,
		CountryCode:      "CZ",
		PostalCode:       "14800",
		CityName:         "Prague",
		CountyName:       "Praha 4",
		AddressLine1:     "V Parku 2308/10",
		StrictValidation: true,
	})

	require.NoError(t, err)
	require.NotNil(t, gotParams)
	assert.Equal(t, "pickup", gotParams.Type)
	assert.Equal(t, "CZ", gotParams.CountryCode)
	assert.Equal(t, "14800", gotParams.PostalCode)
	assert.Equal(t, "Prague", gotParams.CityName)
	assert.Equal(t, "Praha 4", gotParams.CountyName)
	assert.Equal(t, "V Parku 2308/10", gotParams.AddressLine1)
	assert.True(t, gotParams.StrictValidation)
}

func TestClient_ValidateAddress_APIError(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.SimulateErrors = true

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.ValidateAddress(ctx, &dhl.AddressValidationRequest{
		CountryCode: "US",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrInvalidAddress))
}

func TestClient_ValidateAddress_NoMatches(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnValidateAddress = func(ctx context.Context, params *dhl.AddressValidateParams) (*dhl.AddressValidateResponse, error) {
		return &dhl.AddressValidateResponse{
			Warnings: []string{"Postal code not found within city"},
		}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.ValidateAddress(ctx, &dhl.AddressValidationRequest{
		CountryCode: "US",
		PostalCode:  "00000",
	})

	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Empty(t, resp.Matches)
	assert.Contains(t, resp.Warnings, "Postal code not found within city")
}

func testShipmentRequest() *dhl.ShipmentRequest {
	return &dhl.ShipmentRequest{
		ProductCode: "D",
		Accounts:    []dhl.Account{{TypeCode: "shipper", Number: "123456789"}},
		Shipper: dhl.Party{
			Address: dhl.PostalAddress{
				PostalCode:   "14800",
				CityName:     "Prague",
				CountryCode:  "CZ",
				AddressLine1: "V Parku 2308/10",
			},
			Contact: dhl.ContactInformation{
				FullName: "John Brew",
				Phone:    "+420123456789",
			},
		},
		Receiver: dhl.Party{
			Address: dhl.PostalAddress{
				PostalCode:   "10117",
				CityName:     "Berlin",
				CountryCode:  "DE",
				AddressLine1: "Friedrichstr. 43",
			},
			Contact: dhl.ContactInformation{
				FullName: "Jane Smith",
				Phone:    "+49301234567",
			},
		},
		Packages: []dhl.Package{
			{Weight: 2.5, Length: 30, Width: 20, Height: 10, Description: "Books"},
		},
		Description:  "Books",
		RequestLabel: true,
	}
}

func TestClient_CreateShipment_Success(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.CreateShipment(ctx, testShipmentRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ShipmentID)
	assert.NotEmpty(t, resp.TrackingURL)
	require.Len(t, resp.Packages, 1)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, dhl.DocumentLabel, resp.Documents[0].Type)
	assert.NotEmpty(t, resp.Documents[0].Content)
}

func TestClient_CreateShipment_Rejected(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *dhl.ShipmentCreateRequest) (*dhl.ShipmentCreateResponse, error) {
		return nil, dhl.NewAPIError("shipment-create", "7002", "Missing required field", dhl.ErrShipmentRejected).
			WithStatusCode(400).
			WithDetails("content.packages is required")
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.CreateShipment(ctx, testShipmentRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrShipmentRejected))
	assert.Contains(t, err.Error(), "content.packages is required")
}

func TestClient_GetShipmentStatus_Success(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.GetShipmentStatus(ctx, "1234567890")

	require.NoError(t, err)
	assert.Equal(t, "1234567890", resp.ShipmentID)
	assert.Equal(t, dhl.StatusInTransit, resp.Status)
	assert.Len(t, resp.Events, 2)
	assert.NotNil(t, resp.EstimatedDelivery)
}

func TestClient_GetShipmentStatus_NotFound(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnGetTracking = func(ctx context.Context, shipmentID string) (*dhl.TrackingResponse, error) {
		return nil, dhl.NewAPIError("shipment-tracking", "HTTP_404", "No shipment found", dhl.ErrShipmentNotFound).
			WithStatusCode(404)
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.GetShipmentStatus(ctx, "1234567890")

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrShipmentNotFound))
}

func TestClient_GetShipmentStatus_EventFallback(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnGetTracking = func(ctx context.Context, shipmentID string) (*dhl.TrackingResponse, error) {
		return &dhl.TrackingResponse{
			Shipments: []dhl.APITrackedShipment{
				{
					ShipmentTrackingNumber: shipmentID,
					Status:                 "Success",
					Events: []dhl.APITrackingEvent{
						{Date: "2024-01-10", Time: "09:00:00", TypeCode: "PU", Description: "Picked up"},
						{Date: "2024-01-11", Time: "14:30:00", TypeCode: "OK", Description: "Delivered"},
					},
				},
			},
		}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.GetShipmentStatus(ctx, "1234567890")

	require.NoError(t, err)
	assert.Equal(t, dhl.StatusDelivered, resp.Status)
}

func TestClient_GetShipmentStatus_MalformedEventDate(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnGetTracking = func(ctx context.Context, shipmentID string) (*dhl.TrackingResponse, error) {
		return &dhl.TrackingResponse{
			Shipments: []dhl.APITrackedShipment{
				{
					ShipmentTrackingNumber: shipmentID,
					Status:                 "transit",
					Events: []dhl.APITrackingEvent{
						{Date: "not-a-date", Time: "??", TypeCode: "PU", Description: "Shipment picked up"},
					},
				},
			},
		}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.GetShipmentStatus(ctx, "1234567890")

	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	assert.True(t, resp.Events[0].Timestamp.IsZero())
	assert.Equal(t, "Shipment picked up", resp.Events[0].Description)
}

func TestClient_GetShipmentProof_Success(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	client := newTestClient(mockAPI)

	ctx := context.Background()
	resp, err := client.GetShipmentProof(ctx, "1234567890")

	require.NoError(t, err)
	assert.Equal(t, "1234567890", resp.ShipmentID)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, dhl.DocumentPOD, resp.Documents[0].Type)
	assert.NotEmpty(t, resp.SignedBy)
	assert.NotNil(t, resp.SignedAt)
}

func TestClient_GetShipmentProof_NoDocuments(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.OnGetProofOfDelivery = func(ctx context.Context, shipmentID string) (*dhl.ProofResponse, error) {
		return &dhl.ProofResponse{}, nil
	}

	client := newTestClient(mockAPI)

	ctx := context.Background()
	_, err := client.GetShipmentProof(ctx, "1234567890")

	require.Error(t, err)
	assert.True(t, errors.Is(err, dhl.ErrProofNotAvailable))
}

func TestClient_ConcurrentOperations(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	mockAPI.SimulateLatency = 10 * time.Millisecond
	client := newTestClient(mockAPI)

	ctx := context.Background()
	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(4)
	go func() {
		defer wg.Done()
		_, err := client.ValidateAddress(ctx, &dhl.AddressValidationRequest{CountryCode: "CZ"})
		errCh <- err
	}()
	go func() {
		defer wg.Done()
		_, err := client.CreateShipment(ctx, testShipmentRequest())
		errCh <- err
	}()
	go func() {
		defer wg.Done()
		_, err := client.GetShipmentStatus(ctx, "1234567890")
		errCh <- err
	}()
	go func() {
		defer wg.Done()
		_, err := client.GetShipmentProof(ctx, "1234567890")
		errCh <- err
	}()

	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
}

func TestClient_Name(t *testing.T) {
	mockAPI := dhl.NewMockAPIClient()
	client := newTestClient(mockAPI)

	assert.Equal(t, "dhlexpress", client.Name())
}
