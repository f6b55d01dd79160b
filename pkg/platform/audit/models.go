package audit

import (
	"context"
	"time"

	id "verigate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers admin decisions with regulatory weight.
	CategoryCompliance EventCategory = "compliance"

	// CategoryConsistency covers drift between local and provider state.
	CategoryConsistency EventCategory = "consistency"

	// CategoryOperations covers recoverable operational failures.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	SubjectID    id.SubjectID
	SubmissionID string
	Action       string
	Decision     string
	Reason       string
	RequestID    string
	// ActorID is the admin who performed the action, empty for system events.
	ActorID string
	// Detail carries action-specific attributes such as a remote person id.
	Detail map[string]string
}

type AuditEvent string

const (
	EventSubmissionApproved  AuditEvent = "submission_approved"
	EventSubmissionRejected  AuditEvent = "submission_rejected"
	EventMoreInfoRequested   AuditEvent = "more_info_requested"
	EventDocumentReviewed    AuditEvent = "document_reviewed"
	EventPersonRemoteIDStale AuditEvent = "person_remote_id_stale"
	EventPersonReconcileFail AuditEvent = "person_reconcile_failed"
	EventProvisioningFailed  AuditEvent = "provisioning_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSubmissionApproved:  CategoryCompliance,
	EventSubmissionRejected:  CategoryCompliance,
	EventMoreInfoRequested:   CategoryCompliance,
	EventDocumentReviewed:    CategoryCompliance,
	EventPersonRemoteIDStale: CategoryConsistency,
	EventPersonReconcileFail: CategoryOperations,
	EventProvisioningFailed:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]Event, error)
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
