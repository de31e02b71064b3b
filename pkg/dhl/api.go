package dhl

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// APIClient defines the interface for MyDHL API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// ValidateAddress validates an address.
	// GET /address-validate
	ValidateAddress(ctx context.Context, params *AddressValidateParams) (*AddressValidateResponse, error)

	// CreateShipment creates a new shipment.
	// POST /shipments
	CreateShipment(ctx context.Context, req *ShipmentCreateRequest) (*ShipmentCreateResponse, error)

	// GetTracking retrieves tracking information for a shipment.
	// GET /shipments/{id}/tracking
	GetTracking(ctx context.Context, shipmentID string) (*TrackingResponse, error)

	// GetProofOfDelivery retrieves the proof-of-delivery documents.
	// GET /shipments/{id}/proof-of-delivery
	GetProofOfDelivery(ctx context.Context, shipmentID string) (*ProofResponse, error)
}

// ============================================================================
// API Request/Response Types (match the MyDHL API JSON structure)
// ============================================================================

// AddressValidateParams are the query parameters for GET /address-validate.
type AddressValidateParams struct {
	Type             string // "delivery" or "pickup"
	CountryCode      string
	PostalCode       string
	CityName         string
	CountyName       string
	AddressLine1     string
	StrictValidation bool
}

// Values encodes the parameters as a URL query. The API requires type and
// countryCode on every call; optional fields are omitted when empty so the
// remote API sees exactly what the caller supplied.
func (p *AddressValidateParams) Values() url.Values {
	v := url.Values{}
	v.Set("type", p.Type)
	v.Set("countryCode", p.CountryCode)
	if p.PostalCode != "" {
		v.Set("postalCode", p.PostalCode)
	}
	if p.CityName != "" {
		v.Set("cityName", p.CityName)
	}
	if p.CountyName != "" {
		v.Set("countyName", p.CountyName)
	}
	if p.AddressLine1 != "" {
		v.Set("addressLine1", p.AddressLine1)
	}
	if p.StrictValidation {
		v.Set("strictValidation", strconv.FormatBool(p.StrictValidation))
	}
	return v
}

// AddressValidateResponse is the response from GET /address-validate.
type AddressValidateResponse struct {
	Warnings []string     `json:"warnings,omitempty"`
	Address  []APIAddress `json:"address,omitempty"`
}

// APIAddress is a matched address in a validation response.
type APIAddress struct {
	CountryCode string          `json:"countryCode"`
	PostalCode  string          `json:"postalCode,omitempty"`
	CityName    string          `json:"cityName,omitempty"`
	CountyName  string          `json:"countyName,omitempty"`
	ServiceArea *APIServiceArea `json:"serviceArea,omitempty"`
}

// APIServiceArea identifies the serving DHL facility.
type APIServiceArea struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	GMTOffset   string `json:"GMTOffset,omitempty"`
}

// ShipmentCreateRequest is the payload for POST /shipments.
// Extra carries arbitrary additional payload fields; named fields take
// precedence over Extra keys when both are present.
type ShipmentCreateRequest struct {
	PlannedShippingDateAndTime string                 `json:"plannedShippingDateAndTime"`
	ProductCode                string                 `json:"productCode"`
	LocalProductCode           string                 `json:"localProductCode,omitempty"`
	Pickup                     *APIPickup             `json:"pickup,omitempty"`
	Accounts                   []APIAccount           `json:"accounts"`
	CustomerDetails            APICustomerDetails     `json:"customerDetails"`
	Content                    APIShipmentContent     `json:"content"`
	CustomerReferences         []APICustomerReference `json:"customerReferences,omitempty"`
	OutputImageProperties      *APIOutputImage        `json:"outputImageProperties,omitempty"`
	Extra                      map[string]any         `json:"-"`
}

// MarshalJSON merges Extra keys into the encoded payload.
func (r *ShipmentCreateRequest) MarshalJSON() ([]byte, error) {
	type plain ShipmentCreateRequest
	base, err := json.Marshal((*plain)(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// APIPickup requests a courier pickup as part of shipment creation.
type APIPickup struct {
	IsRequested         bool               `json:"isRequested"`
	CloseTime           string             `json:"closeTime,omitempty"`
	Location            string             `json:"location,omitempty"`
	SpecialInstructions []APIValueTypeCode `json:"specialInstructions,omitempty"`
}

// APIAccount is a billing account reference.
type APIAccount struct {
	TypeCode string `json:"typeCode"`
	Number   string `json:"number"`
}

// APICustomerDetails holds the shipper and receiver parties.
type APICustomerDetails struct {
	ShipperDetails  APIParty `json:"shipperDetails"`
	ReceiverDetails APIParty `json:"receiverDetails"`
}

// APIParty is one side of the shipment.
type APIParty struct {
	PostalAddress      APIPostalAddress `json:"postalAddress"`
	ContactInformation APIContactInfo   `json:"contactInformation"`
	TypeCode           string           `json:"typeCode,omitempty"`
}

// APIPostalAddress is a street address.
type APIPostalAddress struct {
	PostalCode   string `json:"postalCode"`
	CityName     string `json:"cityName"`
	CountryCode  string `json:"countryCode"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
	CountyName   string `json:"countyName,omitempty"`
	CountryName  string `json:"countryName,omitempty"`
}

// APIContactInfo identifies the contact person for a party.
type APIContactInfo struct {
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName,omitempty"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobilePhone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// APIShipmentContent describes the parcels and customs posture.
type APIShipmentContent struct {
	Packages              []APIPackage `json:"packages"`
	IsCustomsDeclarable   bool         `json:"isCustomsDeclarable"`
	DeclaredValue         float64      `json:"declaredValue,omitempty"`
	DeclaredValueCurrency string       `json:"declaredValueCurrency,omitempty"`
	Description           string       `json:"description"`
	Incoterm              string       `json:"incoterm,omitempty"`
	UnitOfMeasurement     string       `json:"unitOfMeasurement"`
}

// APIPackage is a single parcel.
type APIPackage struct {
	TypeCode           string                 `json:"typeCode,omitempty"`
	Weight             float64                `json:"weight"`
	Dimensions         APIDimensions          `json:"dimensions"`
	Description        string                 `json:"description,omitempty"`
	CustomerReferences []APICustomerReference `json:"customerReferences,omitempty"`
}

// APIDimensions are parcel dimensions in cm.
type APIDimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// APICustomerReference is a typed customer reference value.
type APICustomerReference struct {
	Value    string `json:"value"`
	TypeCode string `json:"typeCode,omitempty"`
}

// APIValueTypeCode is a generic value/typeCode pair.
type APIValueTypeCode struct {
	Value    string `json:"value"`
	TypeCode string `json:"typeCode,omitempty"`
}

// APIOutputImage controls the label documents returned inline.
type APIOutputImage struct {
	Encoding string `json:"encodingFormat,omitempty"` // "pdf", "zpl"
	PrintDPI int    `json:"printerDPI,omitempty"`
	AllInOne bool   `json:"allDocumentsInOneImage,omitempty"`
}

// ShipmentCreateResponse is the response from POST /shipments.
type ShipmentCreateResponse struct {
	ShipmentTrackingNumber string             `json:"shipmentTrackingNumber"`
	TrackingURL            string             `json:"trackingUrl,omitempty"`
	CancelPickupURL        string             `json:"cancelPickupUrl,omitempty"`
	Packages               []APIPackageResult `json:"packages,omitempty"`
	Documents              []APIDocument      `json:"documents,omitempty"`
	Warnings               []string           `json:"warnings,omitempty"`
}

// APIPackageResult is a per-parcel result from shipment creation.
type APIPackageResult struct {
	ReferenceNumber int    `json:"referenceNumber"`
	TrackingNumber  string `json:"trackingNumber"`
	TrackingURL     string `json:"trackingUrl,omitempty"`
}

// APIDocument is a base64-encoded inline document.
type APIDocument struct {
	TypeCode    string `json:"typeCode"`
	ImageFormat string `json:"imageFormat"`
	Content     string `json:"content"`
}

// TrackingResponse is the response from GET /shipments/{id}/tracking.
type TrackingResponse struct {
	Shipments []APITrackedShipment `json:"shipments"`
}

// APITrackedShipment is the tracking state of one shipment.
type APITrackedShipment struct {
	ShipmentTrackingNumber string             `json:"shipmentTrackingNumber"`
	Status                 string             `json:"status"`
	Description            string             `json:"description,omitempty"`
	ShipmentTimestamp      string             `json:"shipmentTimestamp,omitempty"`
	EstimatedDeliveryDate  string             `json:"estimatedDeliveryDate,omitempty"`
	ProductCode            string             `json:"productCode,omitempty"`
	Events                 []APITrackingEvent `json:"events,omitempty"`
	Pieces                 []APITrackedPiece  `json:"pieces,omitempty"`
}

// APITrackingEvent is a single scan event.
type APITrackingEvent struct {
	Date        string           `json:"date"` // "2006-01-02"
	Time        string           `json:"time"` // "15:04:05"
	TypeCode    string           `json:"typeCode"`
	Description string           `json:"description"`
	ServiceArea []APIServiceArea `json:"serviceArea,omitempty"`
}

// APITrackedPiece is the tracking state of one parcel.
type APITrackedPiece struct {
	Number         int                `json:"number"`
	TrackingNumber string             `json:"trackingNumber"`
	Events         []APITrackingEvent `json:"events,omitempty"`
}

// ProofResponse is the response from GET /shipments/{id}/proof-of-delivery.
type ProofResponse struct {
	Documents []APIProofDocument `json:"documents"`
}

// APIProofDocument is a proof-of-delivery document.
type APIProofDocument struct {
	ShipmentTrackingNumber string `json:"shipmentTrackingNumber,omitempty"`
	TypeCode               string `json:"typeCode"`
	Function               string `json:"function,omitempty"`
	Format                 string `json:"format"`
	Content                string `json:"content"`
	SignedBy               string `json:"signedBy,omitempty"`
	SignedAt               string `json:"signedAt,omitempty"`
}
