package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	audit "verigate/pkg/platform/audit"
	"verigate/pkg/platform/sentinel"
	pstrings "verigate/pkg/platform/strings"
	"verigate/pkg/requestcontext"
)

// Reject closes the submission with a mandatory reason and forgets the stored
// provider response so a resubmission is sent fresh.
func (s *Service) Reject(ctx context.Context, submissionID id.SubmissionID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return dErrors.New(dErrors.CodeBadRequest, "rejection reason is required")
	}

	return s.transition(ctx, submissionID, func(ctx context.Context, sub *models.Submission) error {
		now := s.now(ctx)
		sub.MarkRejected(reason, requestcontext.ActorID(ctx), now)

		integration, err := s.loadIntegration(ctx, sub.SubjectID)
		if err != nil {
			return err
		}
		if integration == nil {
			integration = models.NewIntegration(sub.SubjectID, now)
		}
		integration.SetStatusFor(sub.SubjectType, models.StatusRejected, now)

		if err := s.stores.Submissions.Save(ctx, sub); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save submission")
		}
		if err := s.stores.Integrations.Save(ctx, integration); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save integration")
		}
		return nil
	}, func(ctx context.Context, sub *models.Submission) {
		s.emit(ctx, sub, audit.EventSubmissionRejected, string(models.StatusRejected), reason, nil)
	})
}

// RequestMoreInfo asks the subject to resupply the listed fields or documents.
func (s *Service) RequestMoreInfo(ctx context.Context, submissionID id.SubmissionID, fields []string, message string) error {
	fields = pstrings.FieldNames(fields)
	if len(fields) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "at least one requested field is required")
	}
	message = strings.TrimSpace(message)

	return s.transition(ctx, submissionID, func(ctx context.Context, sub *models.Submission) error {
		sub.MarkNeedsMoreInfo(fields, message, s.now(ctx))
		if err := s.stores.Submissions.Save(ctx, sub); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save submission")
		}
		return nil
	}, func(ctx context.Context, sub *models.Submission) {
		s.emit(ctx, sub, audit.EventMoreInfoRequested, string(models.StatusNeedsMoreInfo), message, map[string]string{
			"fields": strings.Join(fields, ","),
		})
	})
}

// ReviewDocument records an admin decision on one document. Rejecting a
// document of a submission still awaiting review sends it back to the subject.
func (s *Service) ReviewDocument(ctx context.Context, submissionID id.SubmissionID, docType, decision, reason string) error {
	t, err := models.ParseDocumentType(docType)
	if err != nil {
		return err
	}
	d, err := models.ParseDecision(decision)
	if err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)

	var bounced bool
	return s.transition(ctx, submissionID, func(ctx context.Context, sub *models.Submission) error {
		now := s.now(ctx)
		doc, err := s.findOrInitDocument(ctx, sub, t, now)
		if err != nil {
			return err
		}
		doc.Review(d, requestcontext.ActorID(ctx), reason, now)
		if err := s.stores.Documents.Save(ctx, doc); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save document review")
		}

		if d != models.ReviewRejected || !sub.AwaitingAdminReview() {
			return nil
		}
		fields := pstrings.FieldNames(append(append([]string{}, sub.RequestedFields...), string(t)))
		sub.MarkNeedsMoreInfo(fields, reason, now)
		if err := s.stores.Submissions.Save(ctx, sub); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save submission")
		}
		bounced = true
		return nil
	}, func(ctx context.Context, sub *models.Submission) {
		detail := map[string]string{"document_type": string(t)}
		if bounced {
			detail["submission_status"] = string(models.StatusNeedsMoreInfo)
		}
		s.emit(ctx, sub, audit.EventDocumentReviewed, string(d), reason, detail)
	})
}

// findOrInitDocument loads the review row, creating it on first review. The
// file reference is resolved from the legacy data bag when one exists.
func (s *Service) findOrInitDocument(ctx context.Context, sub *models.Submission, t models.DocumentType, now time.Time) (*models.VerificationDocument, error) {
	doc, err := s.stores.Documents.FindBySubmissionAndType(ctx, sub.ID, t)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	ref, err := s.resolver.Resolve(ctx, sub.ID, t)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve document file")
	}
	return models.NewVerificationDocument(sub.ID, t, ref, now), nil
}

// transition runs apply under the subject lock and in one transaction, then
// runs after once the transaction committed.
func (s *Service) transition(ctx context.Context, submissionID id.SubmissionID, apply func(ctx context.Context, sub *models.Submission) error, after func(ctx context.Context, sub *models.Submission)) error {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	release, err := s.lockSubject(ctx, sub.SubjectID)
	if err != nil {
		return err
	}
	defer release()

	err = s.inTx(ctx, sub.SubjectID, func(ctx context.Context) error {
		// Re-read inside the transaction so concurrent writers are observed.
		current, err := s.loadSubmission(ctx, submissionID)
		if err != nil {
			return err
		}
		*sub = *current
		return apply(ctx, sub)
	})
	if err != nil {
		return err
	}

	s.metrics.IncrementTransition(string(sub.Status))
	s.logger.InfoContext(ctx, "submission transition applied",
		"submission_id", sub.ID.String(),
		"subject_id", sub.SubjectID.String(),
		"status", string(sub.Status),
		"request_id", requestcontext.RequestID(ctx),
	)
	after(ctx, sub)
	return nil
}
