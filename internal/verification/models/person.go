package models

import (
	"strings"
	"time"

	id "verigate/pkg/domain"
	"verigate/pkg/email"
)

// PersonRole distinguishes the designated control person from other
// associated persons. Both describe the same kind of human.
type PersonRole string

const (
	RoleControl    PersonRole = "control"
	RoleAssociated PersonRole = "associated"
)

// Person is a beneficial owner or signer of a business subject.
type Person struct {
	ID           id.PersonID
	SubmissionID id.SubmissionID
	Role         PersonRole

	FirstName string
	LastName  string
	Email     string
	BirthDate string
	Title     string

	OwnershipPercentage float64
	HasOwnership        bool
	HasControl          bool
	IsSigner            bool

	Address Address

	SSN              string
	IDType           IDType
	IDNumber         string
	IDIssuingCountry string
	IDFrontRef       FileRef
	IDBackRef        FileRef

	RemoteID            string
	VerificationLinkURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizedEmail is the key reconciliation matches on.
func (p *Person) NormalizedEmail() string {
	return email.Normalize(p.Email)
}

// HasRemoteID reports whether the person has been linked to a provider record.
func (p *Person) HasRemoteID() bool {
	return strings.TrimSpace(p.RemoteID) != ""
}

// BackfillIdentity fills blank identifying fields from data just sent to the
// provider. Populated fields are never overwritten.
func (p *Person) BackfillIdentity(ssn string, idType IDType, idNumber string) bool {
	changed := false
	if strings.TrimSpace(p.SSN) == "" && strings.TrimSpace(ssn) != "" {
		p.SSN = strings.TrimSpace(ssn)
		changed = true
	}
	if p.IDType == "" && idType != "" {
		p.IDType = idType
		changed = true
	}
	if strings.TrimSpace(p.IDNumber) == "" && strings.TrimSpace(idNumber) != "" {
		p.IDNumber = strings.TrimSpace(idNumber)
		changed = true
	}
	return changed
}

// FullName joins first and last name.
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
