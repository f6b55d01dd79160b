package models

import (
	"strings"
	"time"

	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// DocumentType names a document the provider may require.
type DocumentType string

const (
	DocFormation           DocumentType = "formation_document"
	DocOwnership           DocumentType = "ownership_document"
	DocProofOfAddress      DocumentType = "proof_of_address"
	DocDeterminationLetter DocumentType = "determination_letter"
	DocIDFront             DocumentType = "id_front"
	DocIDBack              DocumentType = "id_back"
)

// AllDocumentTypes lists every known type in display order.
var AllDocumentTypes = []DocumentType{
	DocFormation,
	DocOwnership,
	DocProofOfAddress,
	DocDeterminationLetter,
	DocIDFront,
	DocIDBack,
}

var legacyFields = map[DocumentType]string{
	DocFormation:           "formation_document_file",
	DocOwnership:           "ownership_document_file",
	DocProofOfAddress:      "proof_of_address_file",
	DocDeterminationLetter: "determination_letter_file",
	DocIDFront:             "id_front_image",
	DocIDBack:              "id_back_image",
}

var providerPurposes = map[DocumentType]string{
	DocFormation:           "business_formation",
	DocOwnership:           "ownership_information",
	DocProofOfAddress:      "proof_of_address",
	DocDeterminationLetter: "proof_of_tax_identification",
	DocIDFront:             "government_id_front",
	DocIDBack:              "government_id_back",
}

// ParseDocumentType accepts only known types.
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := legacyFields[t]; !ok {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid document type")
	}
	return t, nil
}

// LegacyField is the flat key older submissions used in their data bag.
func (t DocumentType) LegacyField() string {
	return legacyFields[t]
}

// ProviderPurpose is the purpose tag sent alongside the document bytes.
func (t DocumentType) ProviderPurpose() string {
	return providerPurposes[t]
}

// ReviewStatus is the admin decision on one document.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ParseDecision accepts the two terminal review decisions.
func ParseDecision(raw string) (ReviewStatus, error) {
	switch ReviewStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case ReviewApproved:
		return ReviewApproved, nil
	case ReviewRejected:
		return ReviewRejected, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "decision must be approved or rejected")
}

// FileRef is an opaque path understood by the file store.
type FileRef string

// VerificationDocument is one reviewed document of a submission.
type VerificationDocument struct {
	ID              id.DocumentID
	SubmissionID    id.SubmissionID
	Type            DocumentType
	FileRef         FileRef
	ReviewStatus    ReviewStatus
	ReviewedBy      *id.ActorID
	ReviewedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewVerificationDocument creates the lazily-initialized review row.
func NewVerificationDocument(submissionID id.SubmissionID, docType DocumentType, ref FileRef, now time.Time) *VerificationDocument {
	return &VerificationDocument{
		ID:           id.NewDocumentID(),
		SubmissionID: submissionID,
		Type:         docType,
		FileRef:      ref,
		ReviewStatus: ReviewPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Review records a decision. Approval clears any earlier rejection reason.
func (d *VerificationDocument) Review(decision ReviewStatus, reviewer id.ActorID, reason string, now time.Time) {
	d.ReviewStatus = decision
	if !reviewer.IsNil() {
		r := reviewer
		d.ReviewedBy = &r
	}
	d.ReviewedAt = &now
	d.UpdatedAt = now
	if decision == ReviewApproved {
		d.RejectionReason = ""
		return
	}
	d.RejectionReason = strings.TrimSpace(reason)
}

func (d *VerificationDocument) IsApproved() bool {
	return d != nil && d.ReviewStatus == ReviewApproved
}
