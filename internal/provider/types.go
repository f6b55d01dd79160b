package provider

import "encoding/json"

// CustomerType is the provider's subject kind.
type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerBusiness   CustomerType = "business"
)

// Address is the provider's postal address shape.
type Address struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2,omitempty"`
	City        string `json:"city"`
	Subdivision string `json:"subdivision,omitempty"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// IdentifyingInfo is one identifying document or number. Images are data URIs.
type IdentifyingInfo struct {
	Type           string `json:"type"`
	IssuingCountry string `json:"issuing_country,omitempty"`
	Number         string `json:"number,omitempty"`
	ImageFront     string `json:"image_front,omitempty"`
	ImageBack      string `json:"image_back,omitempty"`
}

// Document is an embedded supporting document. File is a data URI.
type Document struct {
	Purposes []string `json:"purposes"`
	File     string   `json:"file"`
}

// CustomerPayload is the provider-facing representation of a subject.
type CustomerPayload struct {
	Type                   CustomerType      `json:"type"`
	Email                  string            `json:"email,omitempty"`
	Phone                  string            `json:"phone,omitempty"`
	FirstName              string            `json:"first_name,omitempty"`
	MiddleName             string            `json:"middle_name,omitempty"`
	LastName               string            `json:"last_name,omitempty"`
	BirthDate              string            `json:"birth_date,omitempty"`
	ResidentialAddress     *Address          `json:"residential_address,omitempty"`
	BusinessLegalName      string            `json:"business_legal_name,omitempty"`
	BusinessTradeName      string            `json:"business_trade_name,omitempty"`
	BusinessDescription    string            `json:"business_description,omitempty"`
	BusinessType           string            `json:"business_type,omitempty"`
	RegisteredAddress      *Address          `json:"registered_address,omitempty"`
	Website                string            `json:"primary_website,omitempty"`
	SignedAgreementID      string            `json:"signed_agreement_id,omitempty"`
	IdentifyingInformation []IdentifyingInfo `json:"identifying_information,omitempty"`
	Documents              []Document        `json:"documents,omitempty"`
}

// PersonPayload describes an associated person to create remotely.
type PersonPayload struct {
	FirstName              string            `json:"first_name"`
	LastName               string            `json:"last_name"`
	Email                  string            `json:"email"`
	BirthDate              string            `json:"birth_date,omitempty"`
	Title                  string            `json:"title,omitempty"`
	ResidentialAddress     *Address          `json:"residential_address,omitempty"`
	HasOwnership           bool              `json:"has_ownership"`
	HasControl             bool              `json:"has_control"`
	IsSigner               bool              `json:"is_signer"`
	OwnershipPercentage    float64           `json:"ownership_percentage,omitempty"`
	IdentifyingInformation []IdentifyingInfo `json:"identifying_information,omitempty"`
}

// CustomerRef is the result of a create or update.
type CustomerRef struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

// CustomerSnapshot is a fetched customer.
type CustomerSnapshot struct {
	ID     string          `json:"id"`
	Type   CustomerType    `json:"type"`
	Email  string          `json:"email"`
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

// PersonSnapshot is one remote associated person.
type PersonSnapshot struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Raw   json.RawMessage `json:"-"`
}

// PersonRef is the result of creating an associated person.
type PersonRef struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Raw   json.RawMessage `json:"-"`
}

// LinkRef is an issued verification link.
type LinkRef struct {
	URL string          `json:"url"`
	Raw json.RawMessage `json:"-"`
}

// WebhookRef describes a registered webhook endpoint.
type WebhookRef struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}
