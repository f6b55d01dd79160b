package models

import "strings"

// SubjectType distinguishes KYC (individual) from KYB (business) subjects.
type SubjectType string

const (
	SubjectIndividual SubjectType = "individual"
	SubjectBusiness   SubjectType = "business"
)

func (t SubjectType) IsValid() bool {
	return t == SubjectIndividual || t == SubjectBusiness
}

// IDType is the kind of government id a person supplied.
type IDType string

const (
	IDTypePassport        IDType = "passport"
	IDTypePassportCard    IDType = "passport_card"
	IDTypeDriversLicense  IDType = "drivers_license"
	IDTypeNationalID      IDType = "national_id"
	IDTypeStateID         IDType = "state_id"
	IDTypeResidencePermit IDType = "residence_permit"
)

// ParseIDType lower-cases and trims; unknown values are kept verbatim so the
// provider can reject them.
func ParseIDType(raw string) IDType {
	return IDType(strings.ToLower(strings.TrimSpace(raw)))
}

// IsPassportClass reports whether the id is a single-sided passport document
// that needs no back image.
func (t IDType) IsPassportClass() bool {
	return t == IDTypePassport || t == IDTypePassportCard
}

// EntityType is a business's declared legal form.
type EntityType string

var nonprofitVariants = map[EntityType]struct{}{
	"nonprofit":             {},
	"non_profit":            {},
	"nonprofit_corporation": {},
	"501c3":                 {},
}

func ParseEntityType(raw string) EntityType {
	return EntityType(strings.ToLower(strings.TrimSpace(raw)))
}

// IsNonprofit reports whether the entity must supply a tax-determination letter.
func (t EntityType) IsNonprofit() bool {
	_, ok := nonprofitVariants[t]
	return ok
}
