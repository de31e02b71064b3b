package dhl

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnValidateAddress    func(ctx context.Context, params *AddressValidateParams) (*AddressValidateResponse, error)
	OnCreateShipment     func(ctx context.Context, req *ShipmentCreateRequest) (*ShipmentCreateResponse, error)
	OnGetTracking        func(ctx context.Context, shipmentID string) (*TrackingResponse, error)
	OnGetProofOfDelivery func(ctx context.Context, shipmentID string) (*ProofResponse, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// ValidateAddress returns a mock validation result.
func (m *MockAPIClient) ValidateAddress(ctx context.Context, params *AddressValidateParams) (*AddressValidateResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, NewAPIError("address-validate", "MOCK_ERROR", "Simulated API error", ErrInvalidAddress)
	}

	if m.OnValidateAddress != nil {
		return m.OnValidateAddress(ctx, params)
	}

	return &AddressValidateResponse{
		Address: []APIAddress{
			{
				CountryCode: params.CountryCode,
				PostalCode:  params.PostalCode,
				CityName:    params.CityName,
				ServiceArea: &APIServiceArea{
					Code:        "PRG",
					Description: "Prague-CZ",
					GMTOffset:   "+01:00",
				},
			},
		},
	}, nil
}

// CreateShipment creates a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentCreateRequest) (*ShipmentCreateResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, NewAPIError("shipment-create", "MOCK_ERROR", "Simulated API error", ErrShipmentRejected)
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	trackingNumber := fmt.Sprintf("%d", 1000000000+time.Now().UnixNano()%9000000000)
	label := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock label " + uuid.New().String()))

	packages := make([]APIPackageResult, len(req.Content.Packages))
	for i := range req.Content.Packages {
		packages[i] = APIPackageResult{
			ReferenceNumber: i + 1,
			TrackingNumber:  fmt.Sprintf("JD%012d", time.Now().UnixNano()%1000000000000),
			TrackingURL:     "https://express.dhl.com/track/" + trackingNumber,
		}
	}

	return &ShipmentCreateResponse{
		ShipmentTrackingNumber: trackingNumber,
		TrackingURL:            "https://express.dhl.com/track/" + trackingNumber,
		Packages:               packages,
		Documents: []APIDocument{
			{TypeCode: "label", ImageFormat: "PDF", Content: label},
		},
	}, nil
}

// GetTracking returns mock tracking information.
func (m *MockAPIClient) GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, NewAPIError("shipment-tracking", "MOCK_ERROR", "Simulated API error", ErrShipmentNotFound)
	}

	if m.OnGetTracking != nil {
		return m.OnGetTracking(ctx, shipmentID)
	}

	now := time.Now()
	return &TrackingResponse{
		Shipments: []APITrackedShipment{
			{
				ShipmentTrackingNumber: shipmentID,
				Status:                 "transit",
				Description:            "Shipment is in transit",
				EstimatedDeliveryDate:  now.AddDate(0, 0, 2).Format("2006-01-02"),
				ProductCode:            "D",
				Events: []APITrackingEvent{
					{
						Date:        now.AddDate(0, 0, -1).Format("2006-01-02"),
						Time:        "09:12:00",
						TypeCode:    "PU",
						Description: "Shipment picked up",
						ServiceArea: []APIServiceArea{{Code: "PRG", Description: "Prague-CZ"}},
					},
					{
						Date:        now.Format("2006-01-02"),
						Time:        "06:41:00",
						TypeCode:    "AF",
						Description: "Arrived at DHL facility",
						ServiceArea: []APIServiceArea{{Code: "LEJ", Description: "Leipzig-DE"}},
					},
				},
				Pieces: []APITrackedPiece{
					{
						Number:         1,
						TrackingNumber: "JD014600003889266941",
					},
				},
			},
		},
	}, nil
}

// GetProofOfDelivery returns a mock proof-of-delivery document.
func (m *MockAPIClient) GetProofOfDelivery(ctx context.Context, shipmentID string) (*ProofResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	if m.SimulateErrors {
		return nil, NewAPIError("shipment-proof", "MOCK_ERROR", "Simulated API error", ErrShipmentNotFound)
	}

	if m.OnGetProofOfDelivery != nil {
		return m.OnGetProofOfDelivery(ctx, shipmentID)
	}

	pod := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 mock proof of delivery"))
	return &ProofResponse{
		Documents: []APIProofDocument{
			{
				ShipmentTrackingNumber: shipmentID,
				TypeCode:               "POD",
				Function:               "delivery",
				Format:                 "PDF",
				Content:                pod,
				SignedBy:               "J BREW",
				SignedAt:               time.Now().Format(time.RFC3339),
			},
		},
	}, nil
}

var _ APIClient = (*MockAPIClient)(nil)
