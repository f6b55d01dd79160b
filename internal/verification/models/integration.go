package models

import (
	"time"

	id "verigate/pkg/domain"
)

// Integration links a local subject to its provider customer record. It is
// the single point of coordination between repeated approval attempts.
type Integration struct {
	ID                  id.IntegrationID
	SubjectID           id.SubjectID
	ProviderCustomerID  string
	KYCStatus           Status
	KYBStatus           Status
	Metadata            map[string]any
	VerificationLinkURL string
	ProvisionedAt       *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewIntegration creates an unlinked integration for a subject.
func NewIntegration(subjectID id.SubjectID, now time.Time) *Integration {
	return &Integration{
		ID:        id.NewIntegrationID(),
		SubjectID: subjectID,
		KYCStatus: StatusNotStarted,
		KYBStatus: StatusNotStarted,
		Metadata:  map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasCustomer reports whether a provider customer already exists.
func (i *Integration) HasCustomer() bool {
	return i != nil && i.ProviderCustomerID != ""
}

// StatusFor returns the per-domain status (kyc for individuals, kyb for
// businesses).
func (i *Integration) StatusFor(t SubjectType) Status {
	if t == SubjectBusiness {
		return i.KYBStatus
	}
	return i.KYCStatus
}

// SetStatusFor mirrors a status onto the matching domain.
func (i *Integration) SetStatusFor(t SubjectType, s Status, now time.Time) {
	if t == SubjectBusiness {
		i.KYBStatus = s
	} else {
		i.KYCStatus = s
	}
	i.UpdatedAt = now
}
