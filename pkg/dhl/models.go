package dhl

import (
	"time"
)

// AddressType selects which side of a shipment an address plays.
type AddressType string

const (
	AddressDelivery AddressType = "delivery"
	AddressPickup   AddressType = "pickup"
)

// ShipmentStatus represents the normalized status of a shipment.
type ShipmentStatus string

const (
	StatusCreated        ShipmentStatus = "created"
	StatusPickedUp       ShipmentStatus = "picked_up"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusFailure        ShipmentStatus = "failure"
	StatusUnknown        ShipmentStatus = "unknown"
)

// DocumentType identifies a document returned by the API.
type DocumentType string

const (
	DocumentLabel   DocumentType = "label"
	DocumentInvoice DocumentType = "invoice"
	DocumentReceipt DocumentType = "receipt"
	DocumentPOD     DocumentType = "POD"
)

// AddressValidationRequest describes an address to validate.
// Fields map one-to-one onto the address-validate query parameters.
type AddressValidationRequest struct {
	Type             AddressType // delivery or pickup, required
	CountryCode      string      // ISO 3166-1 alpha-2, required
	PostalCode       string
	CityName         string
	CountyName       string
	AddressLine1     string
	StrictValidation bool
}

// AddressMatch is a single address the API considers a valid match.
type AddressMatch struct {
	CountryCode string
	PostalCode  string
	CityName    string
	CountyName  string
	ServiceArea ServiceArea
}

// ServiceArea identifies the DHL facility serving an address.
type ServiceArea struct {
	Code        string
	Description string
	GMTOffset   string
}

// AddressValidationResult is the outcome of an address validation call.
type AddressValidationResult struct {
	Valid    bool
	Matches  []AddressMatch
	Warnings []string
}

// PostalAddress is a street address on a shipment party.
type PostalAddress struct {
	PostalCode   string
	CityName     string
	CountryCode  string
	ProvinceCode string
	AddressLine1 string
	AddressLine2 string
	AddressLine3 string
	CountyName   string
	CountryName  string
}

// ContactInformation identifies the person at a shipment party.
type ContactInformation struct {
	FullName    string
	CompanyName string
	Phone       string
	MobilePhone string
	Email       string
}

// Party is one side of a shipment: shipper or receiver.
type Party struct {
	Address  PostalAddress
	Contact  ContactInformation
	TypeCode string // "business" or "private"
}

// Package is a single parcel in a shipment.
type Package struct {
	Weight      float64 // kg
	Length      float64 // cm
	Width       float64 // cm
	Height      float64 // cm
	Description string
	TypeCode    string // DHL packaging code, e.g. "2BP"
	Reference   string
}

// Pickup describes an optional courier pickup for a shipment.
type Pickup struct {
	IsRequested  bool
	CloseTime    string // "18:00"
	Location     string
	Instructions string
}

// Account is a DHL Express billing account bound to a shipment.
type Account struct {
	TypeCode string // "shipper", "payer", "duties-taxes"
	Number   string
}

// ShipmentRequest describes a shipment to create. The named fields cover
// common use; Extra carries any additional MyDHL API payload fields and is
// merged into the outgoing JSON as-is.
type ShipmentRequest struct {
	PlannedShippingDate time.Time
	ProductCode         string // e.g. "D", "N", "P"
	LocalProductCode    string
	Accounts            []Account
	Shipper             Party
	Receiver            Party
	Packages            []Package
	Pickup              *Pickup
	Description         string
	Incoterm            string
	DeclaredValue       float64
	DeclaredCurrency    string
	CustomsDeclarable   bool
	CustomerReferences  []string
	RequestLabel        bool
	Extra               map[string]any
}

// Document is a base64-encoded document returned by the API.
type Document struct {
	Type    DocumentType
	Format  string // "PDF", "PNG", "ZPL"
	Content string // base64
}

// PackageResult is the per-parcel assignment from shipment creation.
type PackageResult struct {
	ReferenceNumber int
	TrackingNumber  string
	TrackingURL     string
}

// ShipmentResult is the outcome of creating a shipment.
type ShipmentResult struct {
	ShipmentID  string // shipment tracking number, input to status/proof lookups
	TrackingURL string
	Packages    []PackageResult
	Documents   []Document
}

// TrackingEvent is a single scan event in a shipment's history.
type TrackingEvent struct {
	Timestamp   time.Time
	Description string
	Location    string
	TypeCode    string
}

// PieceStatus is the tracking state of one parcel in a shipment.
type PieceStatus struct {
	TrackingNumber string
	Status         ShipmentStatus
	Events         []TrackingEvent
}

// TrackingInfo is the current state of a shipment.
type TrackingInfo struct {
	ShipmentID        string
	Status            ShipmentStatus
	StatusDetail      string
	EstimatedDelivery *time.Time
	Events            []TrackingEvent
	Pieces            []PieceStatus
}

// ProofOfDelivery holds the delivery confirmation for a shipment.
type ProofOfDelivery struct {
	ShipmentID string
	SignedBy   string
	SignedAt   *time.Time
	Documents  []Document
}
