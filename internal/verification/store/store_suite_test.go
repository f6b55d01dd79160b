package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/suite"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
)

type submissionStore interface {
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error)
	Save(ctx context.Context, sub *models.Submission) error
}

type documentStore interface {
	FindBySubmissionAndType(ctx context.Context, submissionID id.SubmissionID, docType models.DocumentType) (*models.VerificationDocument, error)
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationDocument, error)
	Save(ctx context.Context, doc *models.VerificationDocument) error
}

type personStore interface {
	FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error)
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.Person, error)
	Save(ctx context.Context, p *models.Person) error
}

type integrationStore interface {
	FindBySubject(ctx context.Context, subjectID id.SubjectID) (*models.Integration, error)
	Save(ctx context.Context, in *models.Integration) error
}

// StoreSuite runs the same behaviour checks against any store backend.
type StoreSuite struct {
	suite.Suite
	ctx          context.Context
	submissions  submissionStore
	documents    documentStore
	persons      personStore
	integrations integrationStore
	reset        func()
	now          time.Time
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if s.reset != nil {
		s.reset()
	}
}

func (s *StoreSuite) newSubmission(t models.SubjectType) *models.Submission {
	sub := models.NewSubmission(id.NewSubjectID(), t, models.Data{
		models.KeyEmail:        "ops@acme.test",
		models.KeyBusinessName: "Acme",
	}, s.now)
	s.Require().NoError(s.submissions.Save(s.ctx, sub))
	return sub
}

// =============================================================================
// Submissions
// =============================================================================

func (s *StoreSuite) TestSubmissionRoundTrip() {
	s.Run("missing submission is not found", func() {
		_, err := s.submissions.FindByID(s.ctx, id.NewSubmissionID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("approved submission keeps snapshot and actor", func() {
		sub := s.newSubmission(models.SubjectBusiness)
		actor := id.ActorID(id.NewSubjectID())
		sub.MarkApproved(&models.ProviderSnapshot{
			Customer:          json.RawMessage(`{"id":"cus_1","status":"approved"}`),
			AssociatedPersons: map[string]json.RawMessage{"per_1": json.RawMessage(`{"id":"per_1"}`)},
			CapturedAt:        s.now,
		}, actor, s.now)
		sub.ProviderCustomerID = "cus_1"
		s.Require().NoError(s.submissions.Save(s.ctx, sub))

		got, err := s.submissions.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.Equal("cus_1", got.ProviderCustomerID)
		s.Require().NotNil(got.ProviderResponse)
		s.JSONEq(`{"id":"cus_1","status":"approved"}`, string(got.ProviderResponse.Customer))
		s.Contains(got.ProviderResponse.AssociatedPersons, "per_1")
		s.Require().NotNil(got.ApprovedBy)
		s.Equal(actor, *got.ApprovedBy)
		s.Equal("Acme", got.Data.String(models.KeyBusinessName))
	})

	s.Run("needs more info clears snapshot and keeps fields", func() {
		sub := s.newSubmission(models.SubjectIndividual)
		sub.MarkApproved(&models.ProviderSnapshot{Customer: json.RawMessage(`{}`)}, id.ActorID{}, s.now)
		s.Require().NoError(s.submissions.Save(s.ctx, sub))

		sub.MarkNeedsMoreInfo([]string{"proof_of_address"}, "please resend", s.now.Add(time.Minute))
		s.Require().NoError(s.submissions.Save(s.ctx, sub))

		got, err := s.submissions.FindByID(s.ctx, sub.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusNeedsMoreInfo, got.Status)
		s.Nil(got.ProviderResponse)
		s.Equal([]string{"proof_of_address"}, got.RequestedFields)
		s.Equal("please resend", got.RequestMessage)
	})
}

// =============================================================================
// Documents
// =============================================================================

func (s *StoreSuite) TestDocumentUpsertBySubmissionAndType() {
	sub := s.newSubmission(models.SubjectBusiness)

	first := models.NewVerificationDocument(sub.ID, models.DocFormation, "f1.pdf", s.now)
	s.Require().NoError(s.documents.Save(s.ctx, first))

	second := models.NewVerificationDocument(sub.ID, models.DocFormation, "f2.pdf", s.now.Add(time.Minute))
	second.Review(models.ReviewApproved, id.ActorID(id.NewSubjectID()), "", s.now.Add(time.Minute))
	s.Require().NoError(s.documents.Save(s.ctx, second))
	s.Equal(first.ID, second.ID, "upsert keeps the original row id")

	got, err := s.documents.FindBySubmissionAndType(s.ctx, sub.ID, models.DocFormation)
	s.Require().NoError(err)
	s.Equal(models.FileRef("f2.pdf"), got.FileRef)
	s.True(got.IsApproved())
	s.NotNil(got.ReviewedBy)

	all, err := s.documents.ListBySubmission(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Len(all, 1)

	_, err = s.documents.FindBySubmissionAndType(s.ctx, sub.ID, models.DocOwnership)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// =============================================================================
// Persons
// =============================================================================

func (s *StoreSuite) TestPersonsListControlFirst() {
	sub := s.newSubmission(models.SubjectBusiness)

	associated := &models.Person{
		ID: id.NewPersonID(), SubmissionID: sub.ID, Role: models.RoleAssociated,
		FirstName: "Grace", Email: "grace@acme.test", CreatedAt: s.now, UpdatedAt: s.now,
	}
	control := &models.Person{
		ID: id.NewPersonID(), SubmissionID: sub.ID, Role: models.RoleControl,
		FirstName: "Ada", Email: "ada@acme.test", HasControl: true,
		Address:   models.Address{Line1: "1 Main", City: "Springfield", PostalCode: "12345", Country: "USA"},
		CreatedAt: s.now.Add(time.Minute), UpdatedAt: s.now.Add(time.Minute),
	}
	s.Require().NoError(s.persons.Save(s.ctx, associated))
	s.Require().NoError(s.persons.Save(s.ctx, control))

	list, err := s.persons.ListBySubmission(s.ctx, sub.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(control.ID, list[0].ID)
	s.Equal("Springfield", list[0].Address.City)

	control.RemoteID = "per_9"
	s.Require().NoError(s.persons.Save(s.ctx, control))
	got, err := s.persons.FindByID(s.ctx, control.ID)
	s.Require().NoError(err)
	s.Equal("per_9", got.RemoteID)
}

// =============================================================================
// Integrations
// =============================================================================

func (s *StoreSuite) TestIntegrationOnePerSubject() {
	subjectID := id.NewSubjectID()

	_, err := s.integrations.FindBySubject(s.ctx, subjectID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	in := models.NewIntegration(subjectID, s.now)
	in.ProviderCustomerID = "cus_1"
	in.SetStatusFor(models.SubjectBusiness, models.StatusUnderReview, s.now)
	in.Metadata = map[string]any{"source": "approve"}
	s.Require().NoError(s.integrations.Save(s.ctx, in))

	got, err := s.integrations.FindBySubject(s.ctx, subjectID)
	s.Require().NoError(err)
	s.Equal("cus_1", got.ProviderCustomerID)
	s.Equal(models.StatusUnderReview, got.KYBStatus)
	s.Equal("approve", got.Metadata["source"])

	dup := models.NewIntegration(subjectID, s.now)
	s.ErrorIs(s.integrations.Save(s.ctx, dup), sentinel.ErrConflict)
}
