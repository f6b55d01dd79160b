package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys read from the free-form submission data bag.
const (
	KeyFirstName         = "first_name"
	KeyLastName          = "last_name"
	KeyMiddleName        = "middle_name"
	KeyEmail             = "email"
	KeyPhone             = "phone"
	KeyBirthDate         = "birth_date"
	KeySSN               = "ssn"
	KeyIDType            = "id_type"
	KeyIDNumber          = "id_number"
	KeyIDIssuingCountry  = "id_issuing_country"
	KeyBusinessName      = "business_legal_name"
	KeyBusinessTradeName = "business_trade_name"
	KeyBusinessType      = "business_type"
	KeyBusinessDesc      = "business_description"
	KeyEIN               = "ein"
	KeyWebsite           = "website"
	KeySignedAgreementID = "signed_agreement_id"

	// Address keys are prefixed: "" for residential, "registered_" for a
	// business's registered address.
	KeyAddressLine1      = "address_line_1"
	KeyAddressLine2      = "address_line_2"
	KeyAddressCity       = "city"
	KeyAddressState      = "state"
	KeyAddressPostalCode = "postal_code"
	KeyAddressCountry    = "country"

	RegisteredPrefix = "registered_"
)

// Data is the submission's provider-specific key/value bag.
type Data map[string]any

// String returns the trimmed string form of key, or "" when absent.
func (d Data) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Bool interprets key as a boolean flag; strings "true"/"1"/"yes" count.
func (d Data) Bool(key string) bool {
	switch val := d[key].(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

// Address assembles an address from prefixed keys.
func (d Data) Address(prefix string) Address {
	return Address{
		Line1:       d.String(prefix + KeyAddressLine1),
		Line2:       d.String(prefix + KeyAddressLine2),
		City:        d.String(prefix + KeyAddressCity),
		Subdivision: d.String(prefix + KeyAddressState),
		PostalCode:  d.String(prefix + KeyAddressPostalCode),
		Country:     d.String(prefix + KeyAddressCountry),
	}
}

// Clone returns a shallow copy so callers can mutate without aliasing.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
