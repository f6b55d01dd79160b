package models

import (
	"encoding/json"
	"time"

	id "verigate/pkg/domain"
)

// ProviderSnapshot is the last provider response kept for an approved
// submission: the customer body plus each associated person's body.
type ProviderSnapshot struct {
	Customer          json.RawMessage            `json:"customer,omitempty"`
	AssociatedPersons map[string]json.RawMessage `json:"associated_persons,omitempty"`
	CapturedAt        time.Time                  `json:"captured_at"`
}

// Merge overlays other onto s. Associated-person entries accumulate rather
// than replace; the customer body is taken from other when present.
func (s *ProviderSnapshot) Merge(other *ProviderSnapshot) *ProviderSnapshot {
	out := &ProviderSnapshot{AssociatedPersons: map[string]json.RawMessage{}}
	if s != nil {
		out.Customer = s.Customer
		out.CapturedAt = s.CapturedAt
		for k, v := range s.AssociatedPersons {
			out.AssociatedPersons[k] = v
		}
	}
	if other != nil {
		if len(other.Customer) > 0 {
			out.Customer = other.Customer
		}
		if !other.CapturedAt.IsZero() {
			out.CapturedAt = other.CapturedAt
		}
		for k, v := range other.AssociatedPersons {
			out.AssociatedPersons[k] = v
		}
	}
	return out
}

// IsEmpty reports whether nothing was captured.
func (s *ProviderSnapshot) IsEmpty() bool {
	return s == nil || (len(s.Customer) == 0 && len(s.AssociatedPersons) == 0)
}

// Submission is one verification attempt for a subject.
type Submission struct {
	ID                 id.SubmissionID
	SubjectID          id.SubjectID
	SubjectType        SubjectType
	Status             Status
	Data               Data
	ProviderCustomerID string
	ProviderResponse   *ProviderSnapshot
	RequestedFields    []string
	RequestMessage     string
	RejectionReason    string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ApprovedAt *time.Time
	ApprovedBy *id.ActorID
	RejectedAt *time.Time
	RejectedBy *id.ActorID
}

// NewSubmission creates a submission on intake.
func NewSubmission(subjectID id.SubjectID, subjectType SubjectType, data Data, now time.Time) *Submission {
	if data == nil {
		data = Data{}
	}
	return &Submission{
		ID:          id.NewSubmissionID(),
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Status:      StatusNotStarted,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkApproved moves the submission to approved and stores the snapshot.
// This is the only transition that writes ProviderResponse.
func (s *Submission) MarkApproved(snapshot *ProviderSnapshot, actor id.ActorID, now time.Time) {
	s.Status = StatusApproved
	s.ProviderResponse = s.ProviderResponse.Merge(snapshot)
	s.ApprovedAt = &now
	if !actor.IsNil() {
		a := actor
		s.ApprovedBy = &a
	}
	s.RequestedFields = nil
	s.RequestMessage = ""
	s.UpdatedAt = now
}

// MarkPending records a non-approved provider outcome. No snapshot is kept.
func (s *Submission) MarkPending(status Status, now time.Time) {
	s.Status = status
	s.ProviderResponse = nil
	s.UpdatedAt = now
}

// MarkSuspended applies a provider-driven paused or offboarded status. The
// stored snapshot is left as it was.
func (s *Submission) MarkSuspended(status Status, now time.Time) {
	s.Status = status
	s.UpdatedAt = now
}

// MarkRejected records an admin rejection and forgets the provider response
// so a resubmission is sent fresh.
func (s *Submission) MarkRejected(reason string, actor id.ActorID, now time.Time) {
	s.Status = StatusRejected
	s.ProviderResponse = nil
	s.RejectionReason = reason
	s.RejectedAt = &now
	if !actor.IsNil() {
		a := actor
		s.RejectedBy = &a
	}
	s.UpdatedAt = now
}

// MarkNeedsMoreInfo asks the subject to resupply fields and documents.
func (s *Submission) MarkNeedsMoreInfo(fields []string, message string, now time.Time) {
	s.Status = StatusNeedsMoreInfo
	s.ProviderResponse = nil
	s.RequestedFields = fields
	s.RequestMessage = message
	s.UpdatedAt = now
}

// AwaitingAdminReview reports whether a document rejection should bounce the
// submission back to the subject.
func (s *Submission) AwaitingAdminReview() bool {
	switch s.Status {
	case StatusNotStarted, StatusUnderReview, StatusIncomplete:
		return true
	}
	return false
}
