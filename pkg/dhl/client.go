// Package dhl provides a client for the DHL Express (MyDHL) shipping API.
package dhl

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const carrierName = "dhlexpress"

// plannedShippingLayout is the timestamp format the MyDHL API expects,
// e.g. "2019-08-04T14:00:31GMT+01:00".
const plannedShippingLayout = "2006-01-02T15:04:05GMT-07:00"

// Config holds DHL Express client configuration. It is copied at
// construction and never mutated afterwards, so a single client is safe
// for concurrent use.
type Config struct {
	APIKey    string
	APISecret string
	TestMode  bool          // route calls to the sandbox endpoint
	BaseURL   string        // overrides both fixed endpoints when set
	Timeout   time.Duration // per-request timeout, default 30s
	UseMock   bool          // when true, uses a mock API client
}

// baseURL resolves the endpoint the client talks to.
func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.TestMode {
		return TestBaseURL
	}
	return ProductionBaseURL
}

// Client is the DHL Express client. It delegates API calls to the
// underlying APIClient (mock or HTTP) and maps between the typed models
// and the MyDHL wire format.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new DHL Express client. Construction fails with
// ErrMissingCredentials when the API key or secret is empty, before any
// network activity. If cfg.UseMock is true, credentials are not required
// and a mock API client is used.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*Client, error) {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: API key is empty", ErrMissingCredentials)
		}
		if cfg.APISecret == "" {
			return nil, fmt.Errorf("%w: API secret is empty", ErrMissingCredentials)
		}
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:   cfg.baseURL(),
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			Timeout:   cfg.Timeout,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}, nil
}

// NewWithAPIClient creates a new DHL Express client with a custom API
// client. This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// BaseURL returns the endpoint this client sends requests to.
func (c *Client) BaseURL() string {
	return c.config.baseURL()
}

// startSpan opens a trace span when a tracer is configured.
func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if c.tracer == nil {
		return ctx, nil
	}
	return c.tracer.Start(ctx, name)
}

func endSpan(span trace.Span) {
	if span != nil {
		span.End()
	}
}

// ValidateAddress validates an address with DHL Express.
func (c *Client) ValidateAddress(ctx context.Context, req *AddressValidationRequest) (*AddressValidationResult, error) {
	ctx, span := c.startSpan(ctx, "dhl.ValidateAddress")
	defer endSpan(span)

	c.logger.Info("Validating address",
		zap.String("country_code", req.CountryCode),
		zap.String("postal_code", req.PostalCode),
		zap.String("city", req.CityName),
	)

	apiResp, err := c.apiClient.ValidateAddress(ctx, addressValidationToAPI(req))
	if err != nil {
		c.logger.Error("DHL Express API error", zap.Error(err))
		return nil, err
	}

	return addressValidateResponseToResult(apiResp), nil
}

// CreateShipment creates a shipment with DHL Express and returns the
// assigned shipment identifier together with the label documents.
func (c *Client) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResult, error) {
	ctx, span := c.startSpan(ctx, "dhl.CreateShipment")
	defer endSpan(span)

	c.logger.Info("Creating shipment",
		zap.String("product_code", req.ProductCode),
		zap.String("receiver", req.Receiver.Contact.FullName),
		zap.Int("package_count", len(req.Packages)),
	)

	apiResp, err := c.apiClient.CreateShipment(ctx, shipmentRequestToAPI(req))
	if err != nil {
		c.logger.Error("DHL Express API error", zap.Error(err))
		return nil, err
	}

	return shipmentResponseToResult(apiResp), nil
}

// GetShipmentStatus fetches the current status of a shipment.
func (c *Client) GetShipmentStatus(ctx context.Context, shipmentID string) (*TrackingInfo, error) {
	ctx, span := c.startSpan(ctx, "dhl.GetShipmentStatus")
	defer endSpan(span)

	c.logger.Info("Getting shipment status", zap.String("shipment_id", shipmentID))

	apiResp, err := c.apiClient.GetTracking(ctx, shipmentID)
	if err != nil {
		c.logger.Error("DHL Express API error", zap.Error(err))
		return nil, err
	}

	return trackingResponseToInfo(shipmentID, apiResp), nil
}

// GetShipmentProof fetches the proof-of-delivery documents of a shipment.
func (c *Client) GetShipmentProof(ctx context.Context, shipmentID string) (*ProofOfDelivery, error) {
	ctx, span := c.startSpan(ctx, "dhl.GetShipmentProof")
	defer endSpan(span)

	c.logger.Info("Getting shipment proof", zap.String("shipment_id", shipmentID))

	apiResp, err := c.apiClient.GetProofOfDelivery(ctx, shipmentID)
	if err != nil {
		c.logger.Error("DHL Express API error", zap.Error(err))
		return nil, err
	}

	proof := proofResponseToResult(shipmentID, apiResp)
	if len(proof.Documents) == 0 {
		return nil, NewAPIError("shipment-proof", "NO_DOCUMENTS",
			"no proof of delivery documents returned", ErrProofNotAvailable)
	}
	return proof, nil
}

// ============================================================================
// Conversion helpers: models -> API wire format
// ============================================================================

func addressValidationToAPI(req *AddressValidationRequest) *AddressValidateParams {
	addrType := req.Type
	if addrType == "" {
		addrType = AddressDelivery
	}
	return &AddressValidateParams{
		Type:             string(addrType),
		CountryCode:      req.CountryCode,
		PostalCode:       req.PostalCode,
		CityName:         req.CityName,
		CountyName:       req.CountyName,
		AddressLine1:     req.AddressLine1,
		StrictValidation: req.StrictValidation,
	}
}

func shipmentRequestToAPI(req *ShipmentRequest) *ShipmentCreateRequest {
	shippingDate := req.PlannedShippingDate
	if shippingDate.IsZero() {
		shippingDate = time.Now()
	}

	accounts := make([]APIAccount, len(req.Accounts))
	for i, a := range req.Accounts {
		accounts[i] = APIAccount{TypeCode: a.TypeCode, Number: a.Number}
	}

	references := make([]APICustomerReference, len(req.CustomerReferences))
	for i, r := range req.CustomerReferences {
		references[i] = APICustomerReference{Value: r, TypeCode: "CU"}
	}

	apiReq := &ShipmentCreateRequest{
		PlannedShippingDateAndTime: shippingDate.Format(plannedShippingLayout),
		ProductCode:                req.ProductCode,
		LocalProductCode:           req.LocalProductCode,
		Accounts:                   accounts,
		CustomerDetails: APICustomerDetails{
			ShipperDetails:  partyToAPI(req.Shipper),
			ReceiverDetails: partyToAPI(req.Receiver),
		},
		Content: APIShipmentContent{
			Packages:              packagesToAPI(req.Packages),
			IsCustomsDeclarable:   req.CustomsDeclarable,
			DeclaredValue:         req.DeclaredValue,
			DeclaredValueCurrency: req.DeclaredCurrency,
			Description:           req.Description,
			Incoterm:              req.Incoterm,
			UnitOfMeasurement:     "metric",
		},
		CustomerReferences: references,
		Extra:              req.Extra,
	}

	if req.Pickup != nil {
		apiReq.Pickup = &APIPickup{
			IsRequested: req.Pickup.IsRequested,
			CloseTime:   req.Pickup.CloseTime,
			Location:    req.Pickup.Location,
		}
		if req.Pickup.Instructions != "" {
			apiReq.Pickup.SpecialInstructions = []APIValueTypeCode{
				{Value: req.Pickup.Instructions},
			}
		}
	}

	if req.RequestLabel {
		apiReq.OutputImageProperties = &APIOutputImage{Encoding: "pdf", AllInOne: true}
	}

	return apiReq
}

func partyToAPI(p Party) APIParty {
	return APIParty{
		PostalAddress: APIPostalAddress{
			PostalCode:   p.Address.PostalCode,
			CityName:     p.Address.CityName,
			CountryCode:  p.Address.CountryCode,
			ProvinceCode: p.Address.ProvinceCode,
			AddressLine1: p.Address.AddressLine1,
			AddressLine2: p.Address.AddressLine2,
			AddressLine3: p.Address.AddressLine3,
			CountyName:   p.Address.CountyName,
			CountryName:  p.Address.CountryName,
		},
		ContactInformation: APIContactInfo{
			FullName:    p.Contact.FullName,
			CompanyName: p.Contact.CompanyName,
			Phone:       p.Contact.Phone,
			MobilePhone: p.Contact.MobilePhone,
			Email:       p.Contact.Email,
		},
		TypeCode: p.TypeCode,
	}
}

func packagesToAPI(pkgs []Package) []APIPackage {
	result := make([]APIPackage, len(pkgs))
	for i, p := range pkgs {
		result[i] = APIPackage{
			TypeCode:    p.TypeCode,
			Weight:      p.Weight,
			Dimensions:  APIDimensions{Length: p.Length, Width: p.Width, Height: p.Height},
			Description: p.Description,
		}
		if p.Reference != "" {
			result[i].CustomerReferences = []APICustomerReference{
				{Value: p.Reference, TypeCode: "CU"},
			}
		}
	}
	return result
}

// ============================================================================
// Conversion helpers: API wire format -> models
// ============================================================================

func addressValidateResponseToResult(resp *AddressValidateResponse) *AddressValidationResult {
	matches := make([]AddressMatch, len(resp.Address))
	for i, a := range resp.Address {
		match := AddressMatch{
			CountryCode: a.CountryCode,
			PostalCode:  a.PostalCode,
			CityName:    a.CityName,
			CountyName:  a.CountyName,
		}
		if a.ServiceArea != nil {
			match.ServiceArea = ServiceArea{
				Code:        a.ServiceArea.Code,
				Description: a.ServiceArea.Description,
				GMTOffset:   a.ServiceArea.GMTOffset,
			}
		}
		matches[i] = match
	}

	return &AddressValidationResult{
		Valid:    len(matches) > 0,
		Matches:  matches,
		Warnings: resp.Warnings,
	}
}

func shipmentResponseToResult(resp *ShipmentCreateResponse) *ShipmentResult {
	packages := make([]PackageResult, len(resp.Packages))
	for i, p := range resp.Packages {
		packages[i] = PackageResult{
			ReferenceNumber: p.ReferenceNumber,
			TrackingNumber:  p.TrackingNumber,
			TrackingURL:     p.TrackingURL,
		}
	}

	documents := make([]Document, len(resp.Documents))
	for i, d := range resp.Documents {
		documents[i] = Document{
			Type:    documentTypeFromAPI(d.TypeCode),
			Format:  d.ImageFormat,
			Content: d.Content,
		}
	}

	return &ShipmentResult{
		ShipmentID:  resp.ShipmentTrackingNumber,
		TrackingURL: resp.TrackingURL,
		Packages:    packages,
		Documents:   documents,
	}
}

func trackingResponseToInfo(shipmentID string, resp *TrackingResponse) *TrackingInfo {
	info := &TrackingInfo{
		ShipmentID: shipmentID,
		Status:     StatusUnknown,
	}
	if len(resp.Shipments) == 0 {
		return info
	}

	s := resp.Shipments[0]
	if s.ShipmentTrackingNumber != "" {
		info.ShipmentID = s.ShipmentTrackingNumber
	}
	info.Status = mapTrackingStatus(s.Status)
	info.StatusDetail = s.Description
	info.Events = eventsFromAPI(s.Events)

	if s.EstimatedDeliveryDate != "" {
		if t, err := time.Parse("2006-01-02", s.EstimatedDeliveryDate); err == nil {
			info.EstimatedDelivery = &t
		}
	}

	// Prefer the latest event type when the shipment-level status is a
	// plain request outcome rather than a delivery state.
	if info.Status == StatusUnknown && len(info.Events) > 0 {
		info.Status = mapEventType(s.Events[len(s.Events)-1].TypeCode)
	}

	info.Pieces = make([]PieceStatus, len(s.Pieces))
	for i, piece := range s.Pieces {
		events := eventsFromAPI(piece.Events)
		status := info.Status
		if len(piece.Events) > 0 {
			status = mapEventType(piece.Events[len(piece.Events)-1].TypeCode)
		}
		info.Pieces[i] = PieceStatus{
			TrackingNumber: piece.TrackingNumber,
			Status:         status,
			Events:         events,
		}
	}

	return info
}

func eventsFromAPI(events []APITrackingEvent) []TrackingEvent {
	result := make([]TrackingEvent, len(events))
	for i, e := range events {
		// An unparseable event date leaves the timestamp zero; the event
		// itself is still reported.
		ts, _ := time.Parse("2006-01-02 15:04:05", e.Date+" "+e.Time)
		location := ""
		if len(e.ServiceArea) > 0 {
			location = e.ServiceArea[0].Description
		}
		result[i] = TrackingEvent{
			Timestamp:   ts,
			Description: e.Description,
			Location:    location,
			TypeCode:    e.TypeCode,
		}
	}
	return result
}

func proofResponseToResult(shipmentID string, resp *ProofResponse) *ProofOfDelivery {
	proof := &ProofOfDelivery{ShipmentID: shipmentID}
	for _, d := range resp.Documents {
		proof.Documents = append(proof.Documents, Document{
			Type:    documentTypeFromAPI(d.TypeCode),
			Format:  d.Format,
			Content: d.Content,
		})
		if proof.SignedBy == "" && d.SignedBy != "" {
			proof.SignedBy = d.SignedBy
			if t, err := time.Parse(time.RFC3339, d.SignedAt); err == nil {
				proof.SignedAt = &t
			}
		}
	}
	return proof
}

// ============================================================================
// Mapping helpers
// ============================================================================

func documentTypeFromAPI(typeCode string) DocumentType {
	switch typeCode {
	case "label":
		return DocumentLabel
	case "invoice":
		return DocumentInvoice
	case "receipt":
		return DocumentReceipt
	case "POD", "pod":
		return DocumentPOD
	default:
		return DocumentType(typeCode)
	}
}

func mapTrackingStatus(status string) ShipmentStatus {
	switch status {
	case "pre-transit", "created":
		return StatusCreated
	case "transit", "in_transit":
		return StatusInTransit
	case "delivered":
		return StatusDelivered
	case "failure":
		return StatusFailure
	default:
		return StatusUnknown
	}
}

// mapEventType maps MyDHL checkpoint type codes to shipment states.
func mapEventType(typeCode string) ShipmentStatus {
	switch typeCode {
	case "PU":
		return StatusPickedUp
	case "AF", "PL", "DF", "AR":
		return StatusInTransit
	case "WC":
		return StatusOutForDelivery
	case "OK", "DD":
		return StatusDelivered
	case "RT", "MS", "CA":
		return StatusFailure
	default:
		return StatusUnknown
	}
}
