package service

import (
	"context"

	"verigate/internal/provider"
	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
)

// SubmissionView is a submission with everything attached to it.
type SubmissionView struct {
	Submission  *models.Submission
	Documents   []*models.VerificationDocument
	Persons     []*models.Person
	Integration *models.Integration
}

func (s *Service) Get(ctx context.Context, submissionID id.SubmissionID) (*SubmissionView, error) {
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	docs, err := s.stores.Documents.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load documents")
	}
	persons, err := s.stores.Persons.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load associated persons")
	}
	integration, err := s.loadIntegration(ctx, sub.SubjectID)
	if err != nil {
		return nil, err
	}
	return &SubmissionView{Submission: sub, Documents: docs, Persons: persons, Integration: integration}, nil
}

// ProviderWebhooks lists the webhook endpoints registered at the provider.
func (s *Service) ProviderWebhooks(ctx context.Context) ([]provider.WebhookRef, error) {
	callCtx, end := s.traceCall(ctx, provider.OpListWebhooks)
	res := s.provider.ListWebhooks(callCtx)
	end(res.Err())
	hooks, ok := res.Value()
	if !ok {
		return nil, providerFailure(res.Err())
	}
	return hooks, nil
}
