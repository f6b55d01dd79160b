package service

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verigate/internal/provider"
	"verigate/internal/verification/documents"
	"verigate/internal/verification/models"
	"verigate/internal/verification/reconcile"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	audit "verigate/pkg/platform/audit"
	"verigate/pkg/requestcontext"
)

// ApprovalOutcome reports what an Approve or Refresh call did.
type ApprovalOutcome struct {
	SubmissionID       id.SubmissionID
	Status             models.Status
	ProviderCustomerID string
	CustomerCreated    bool
	Reconciliation     *reconcile.Outcome
	Provisioned        bool
	// Reconfirmed is set when a follow-up fetch found the customer approved
	// after the upsert reported otherwise.
	Reconfirmed bool
}

// Approve gates the submission, sends it to the provider and applies the
// normalized result. Validation failures make no network call and write
// nothing. A failed customer upsert writes nothing either.
func (s *Service) Approve(ctx context.Context, submissionID id.SubmissionID) (outcome *ApprovalOutcome, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "verification.Approve",
		trace.WithAttributes(attribute.String("submission_id", submissionID.String())))
	defer func() {
		s.metrics.ObserveApproveLatency(time.Since(start))
		s.metrics.IncrementApproval(approvalLabel(outcome, err))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	release, err := s.lockSubject(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	defer release()
	// Re-read under the lock.
	if sub, err = s.loadSubmission(ctx, submissionID); err != nil {
		return nil, err
	}

	docs, err := s.documentIndex(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if verr := gate(sub, docs); verr != nil {
		s.logger.InfoContext(ctx, "approval blocked by gate",
			"submission_id", sub.ID.String(),
			"missing_documents", verr.MissingDocuments,
			"missing_fields", verr.MissingFields,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, verr
	}

	integration, err := s.loadIntegration(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	var persons []*models.Person
	if sub.SubjectType == models.SubjectBusiness {
		if persons, err = s.stores.Persons.ListBySubmission(ctx, sub.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load associated persons")
		}
	}

	payload, err := BuildCustomerPayload(ctx, s.files, sub, docs)
	if err != nil {
		return nil, err
	}

	now := s.now(ctx)
	if integration == nil {
		integration = models.NewIntegration(sub.SubjectID, now)
	}
	ref, created, err := s.upsertCustomer(ctx, sub, integration, payload)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("customer_id", integration.ProviderCustomerID))

	outcome = &ApprovalOutcome{
		SubmissionID:       sub.ID,
		ProviderCustomerID: integration.ProviderCustomerID,
		CustomerCreated:    created,
	}

	responses := map[string]json.RawMessage{}
	if sub.SubjectType == models.SubjectBusiness {
		control, others := splitPersons(persons)
		rec, err := s.reconciler.Reconcile(ctx, reconcile.Batch{
			CustomerID:    integration.ProviderCustomerID,
			Integration:   integration,
			Submission:    sub,
			ControlPerson: control,
			Persons:       others,
		})
		if err != nil {
			return nil, err
		}
		outcome.Reconciliation = rec
		responses = rec.Responses
	}

	status := models.NormalizeString(ref.Status)
	snapshot := &models.ProviderSnapshot{
		Customer:          ref.Raw,
		AssociatedPersons: responses,
		CapturedAt:        now,
	}
	first, err := s.applyProviderStatus(ctx, sub, integration, status, snapshot)
	if err != nil {
		return nil, err
	}
	outcome.Status = sub.Status
	s.logger.InfoContext(ctx, "submission sent to provider",
		"submission_id", sub.ID.String(),
		"subject_id", sub.SubjectID.String(),
		"customer_id", integration.ProviderCustomerID,
		"provider_status", ref.Status,
		"status", string(sub.Status),
		"request_id", requestcontext.RequestID(ctx),
	)

	if status == models.StatusApproved {
		s.afterApproved(ctx, sub, integration, first, outcome)
		return outcome, nil
	}
	s.reconfirm(ctx, sub, integration, responses, outcome)
	return outcome, nil
}

// Refresh re-reads the provider customer and applies an approval the local
// state has not seen yet. Other statuses are left to the next Approve.
func (s *Service) Refresh(ctx context.Context, submissionID id.SubmissionID) (*ApprovalOutcome, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	release, err := s.lockSubject(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	defer release()
	if sub, err = s.loadSubmission(ctx, submissionID); err != nil {
		return nil, err
	}

	integration, err := s.loadIntegration(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	if !integration.HasCustomer() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "submission has not been sent to the provider")
	}

	outcome := &ApprovalOutcome{SubmissionID: sub.ID, ProviderCustomerID: integration.ProviderCustomerID}
	res := s.getCustomer(ctx, integration.ProviderCustomerID)
	snap, ok := res.Value()
	if !ok {
		return nil, providerFailure(res.Err())
	}
	if err := s.confirmApproved(ctx, sub, integration, snap, nil, outcome); err != nil {
		return nil, err
	}
	outcome.Status = sub.Status
	return outcome, nil
}

func (s *Service) documentIndex(ctx context.Context, submissionID id.SubmissionID) (map[models.DocumentType]*models.VerificationDocument, error) {
	docs, err := s.stores.Documents.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents")
	}
	out := make(map[models.DocumentType]*models.VerificationDocument, len(docs))
	for _, d := range docs {
		out[d.Type] = d
	}
	return out, nil
}

// gate checks required documents and address fields. It returns nil when the
// submission may be sent.
func gate(sub *models.Submission, docs map[models.DocumentType]*models.VerificationDocument) *ValidationError {
	verr := &ValidationError{}
	if !sub.SubjectType.IsValid() {
		verr.MissingFields = append(verr.MissingFields, "subject_type")
		return verr
	}
	for _, docType := range documents.RequiredDocumentsFor(documents.ProfileOf(sub)) {
		if !docs[docType].IsApproved() {
			verr.MissingDocuments = append(verr.MissingDocuments, docType)
		}
	}

	prefix, label := "", "residential_address."
	if sub.SubjectType == models.SubjectBusiness {
		prefix, label = models.RegisteredPrefix, "registered_address."
	}
	for _, field := range sub.Data.Address(prefix).Missing() {
		verr.MissingFields = append(verr.MissingFields, label+field)
	}
	if verr.empty() {
		return nil
	}
	return verr
}

// upsertCustomer updates the linked customer or creates one. A new customer id
// is committed before anything else happens so a later failure cannot orphan
// the remote record.
func (s *Service) upsertCustomer(ctx context.Context, sub *models.Submission, integration *models.Integration, payload provider.CustomerPayload) (provider.CustomerRef, bool, error) {
	if integration.HasCustomer() {
		callCtx, end := s.traceCall(ctx, provider.OpUpdateCustomer)
		res := s.provider.UpdateCustomer(callCtx, integration.ProviderCustomerID, payload)
		end(res.Err())
		ref, ok := res.Value()
		if !ok {
			return provider.CustomerRef{}, false, s.customerFailure(ctx, sub, res.Err())
		}
		return ref, false, nil
	}

	callCtx, end := s.traceCall(ctx, provider.OpCreateCustomer)
	res := s.provider.CreateCustomer(callCtx, payload)
	end(res.Err())
	ref, ok := res.Value()
	if !ok {
		return provider.CustomerRef{}, false, s.customerFailure(ctx, sub, res.Err())
	}

	integration.ProviderCustomerID = ref.ID
	integration.UpdatedAt = s.now(ctx)
	err := s.inTx(ctx, sub.SubjectID, func(ctx context.Context) error {
		return s.stores.Integrations.Save(ctx, integration)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist new provider customer id",
			"anomaly", true,
			"submission_id", sub.ID.String(),
			"customer_id", ref.ID,
			"error", err,
		)
		return provider.CustomerRef{}, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist provider customer id")
	}
	s.logger.InfoContext(ctx, "provider customer created",
		"submission_id", sub.ID.String(),
		"customer_id", ref.ID,
	)
	return ref, true, nil
}

func (s *Service) customerFailure(ctx context.Context, sub *models.Submission, pe *provider.Error) error {
	s.logger.ErrorContext(ctx, "provider customer upsert failed",
		"submission_id", sub.ID.String(),
		"operation", string(pe.Operation),
		"category", string(pe.Category),
		"status_code", pe.StatusCode,
		"request_id", requestcontext.RequestID(ctx),
		"error", pe,
	)
	return providerFailure(pe)
}

// applyProviderStatus writes the submission transition and mirrors status on
// the integration in one transaction. It reports whether the integration
// still has to be provisioned, which holds until the first successful
// provisioning after an approval.
func (s *Service) applyProviderStatus(ctx context.Context, sub *models.Submission, integration *models.Integration, status models.Status, snapshot *models.ProviderSnapshot) (bool, error) {
	now := s.now(ctx)
	first := status == models.StatusApproved && integration.ProvisionedAt == nil

	switch status {
	case models.StatusApproved:
		sub.MarkApproved(snapshot, requestcontext.ActorID(ctx), now)
	case models.StatusPaused, models.StatusOffboarded:
		sub.MarkSuspended(status, now)
	default:
		sub.MarkPending(models.StatusUnderReview, now)
	}
	sub.ProviderCustomerID = integration.ProviderCustomerID
	integration.SetStatusFor(sub.SubjectType, status, now)

	err := s.inTx(ctx, sub.SubjectID, func(ctx context.Context) error {
		if err := s.stores.Submissions.Save(ctx, sub); err != nil {
			return err
		}
		return s.stores.Integrations.Save(ctx, integration)
	})
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist approval result")
	}
	s.metrics.IncrementTransition(string(sub.Status))
	return first, nil
}

// reconfirm fetches the customer once more after commit. Providers sometimes
// finish verification between the upsert response and this read.
func (s *Service) reconfirm(ctx context.Context, sub *models.Submission, integration *models.Integration, responses map[string]json.RawMessage, outcome *ApprovalOutcome) {
	res := s.getCustomer(ctx, integration.ProviderCustomerID)
	snap, ok := res.Value()
	if !ok {
		s.logger.WarnContext(ctx, "re-confirmation fetch failed",
			"submission_id", sub.ID.String(),
			"customer_id", integration.ProviderCustomerID,
			"error", res.Err(),
		)
		return
	}
	if err := s.confirmApproved(ctx, sub, integration, snap, responses, outcome); err != nil {
		s.logger.ErrorContext(ctx, "failed to apply re-confirmed approval",
			"submission_id", sub.ID.String(),
			"customer_id", integration.ProviderCustomerID,
			"error", err,
		)
		return
	}
	outcome.Status = sub.Status
}

// confirmApproved applies the approved transition when snap is approved and
// the stored integration does not reflect it yet.
func (s *Service) confirmApproved(ctx context.Context, sub *models.Submission, integration *models.Integration, snap provider.CustomerSnapshot, responses map[string]json.RawMessage, outcome *ApprovalOutcome) error {
	if models.NormalizeString(snap.Status) != models.StatusApproved {
		return nil
	}
	current, err := s.loadIntegration(ctx, sub.SubjectID)
	if err != nil {
		return err
	}
	if current != nil {
		if current.StatusFor(sub.SubjectType) == models.StatusApproved {
			s.logger.InfoContext(ctx, "approval already reflected on integration",
				"submission_id", sub.ID.String(),
				"customer_id", current.ProviderCustomerID,
			)
			return nil
		}
		*integration = *current
	}

	snapshot := &models.ProviderSnapshot{
		Customer:          snap.Raw,
		AssociatedPersons: responses,
		CapturedAt:        s.now(ctx),
	}
	first, err := s.applyProviderStatus(ctx, sub, integration, models.StatusApproved, snapshot)
	if err != nil {
		return err
	}
	outcome.Reconfirmed = true
	s.afterApproved(ctx, sub, integration, first, outcome)
	return nil
}

func (s *Service) afterApproved(ctx context.Context, sub *models.Submission, integration *models.Integration, first bool, outcome *ApprovalOutcome) {
	s.emit(ctx, sub, audit.EventSubmissionApproved, string(models.StatusApproved), "", map[string]string{
		"customer_id": integration.ProviderCustomerID,
	})
	if first {
		outcome.Provisioned = s.provision(ctx, sub, integration)
	}
}

// provision is best effort: a failure is logged, counted and audited, and the
// approval stands.
func (s *Service) provision(ctx context.Context, sub *models.Submission, integration *models.Integration) bool {
	if err := s.provisioner.Provision(ctx, integration, integration.ProviderCustomerID); err != nil {
		s.metrics.IncrementProvisioningFailure()
		s.logger.ErrorContext(ctx, "provisioning failed after approval",
			"submission_id", sub.ID.String(),
			"subject_id", sub.SubjectID.String(),
			"customer_id", integration.ProviderCustomerID,
			"error", err,
		)
		s.emit(ctx, sub, audit.EventProvisioningFailed, "", err.Error(), map[string]string{
			"customer_id": integration.ProviderCustomerID,
		})
		return false
	}

	now := s.now(ctx)
	integration.ProvisionedAt = &now
	integration.UpdatedAt = now
	err := s.inTx(ctx, sub.SubjectID, func(ctx context.Context) error {
		return s.stores.Integrations.Save(ctx, integration)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record provisioning time",
			"subject_id", sub.SubjectID.String(),
			"error", err,
		)
	}
	return true
}

func (s *Service) getCustomer(ctx context.Context, customerID string) provider.Result[provider.CustomerSnapshot] {
	callCtx, end := s.traceCall(ctx, provider.OpGetCustomer)
	res := s.provider.GetCustomer(callCtx, customerID)
	end(res.Err())
	return res
}

func (s *Service) traceCall(ctx context.Context, op provider.Operation) (context.Context, func(*provider.Error)) {
	ctx, span := s.tracer.Start(ctx, "provider."+string(op), trace.WithSpanKind(trace.SpanKindClient))
	return ctx, func(pe *provider.Error) {
		if pe != nil {
			span.RecordError(pe)
			span.SetStatus(codes.Error, string(pe.Category))
		}
		span.End()
	}
}

// splitPersons separates the control person from the other associated persons.
func splitPersons(persons []*models.Person) (*models.Person, []*models.Person) {
	var control *models.Person
	others := make([]*models.Person, 0, len(persons))
	for _, p := range persons {
		if control == nil && p.Role == models.RoleControl {
			control = p
			continue
		}
		others = append(others, p)
	}
	return control, others
}

func approvalLabel(outcome *ApprovalOutcome, err error) string {
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeValidation:
			return "validation_failed"
		case dErrors.CodeBadGateway:
			return "provider_failed"
		case dErrors.CodeConflict:
			return "conflict"
		}
		return "error"
	}
	if outcome != nil && outcome.Status == models.StatusApproved {
		return "approved"
	}
	return "pending"
}
