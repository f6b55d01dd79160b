// Package store persists submissions, documents, persons and integrations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
)

// InMemorySubmissionStore keeps submissions keyed by id. Rows are copied on
// the way in and out so callers never share state with the store.
type InMemorySubmissionStore struct {
	mu   sync.RWMutex
	rows map[id.SubmissionID]models.Submission
}

func NewInMemorySubmissionStore() *InMemorySubmissionStore {
	return &InMemorySubmissionStore{rows: make(map[id.SubmissionID]models.Submission)}
}

func (s *InMemorySubmissionStore) FindByID(_ context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[submissionID]
	if !ok {
		return nil, fmt.Errorf("submission %s: %w", submissionID, sentinel.ErrNotFound)
	}
	return copySubmission(row), nil
}

func (s *InMemorySubmissionStore) Save(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sub.ID] = *copySubmission(*sub)
	return nil
}

func copySubmission(in models.Submission) *models.Submission {
	out := in
	out.Data = in.Data.Clone()
	if in.RequestedFields != nil {
		out.RequestedFields = append([]string(nil), in.RequestedFields...)
	}
	if in.ProviderResponse != nil {
		out.ProviderResponse = (*models.ProviderSnapshot)(nil).Merge(in.ProviderResponse)
	}
	return &out
}

type docKey struct {
	submission id.SubmissionID
	docType    models.DocumentType
}

// InMemoryDocumentStore keeps at most one review row per submission and type.
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	rows map[docKey]models.VerificationDocument
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{rows: make(map[docKey]models.VerificationDocument)}
}

func (s *InMemoryDocumentStore) FindBySubmissionAndType(_ context.Context, submissionID id.SubmissionID, docType models.DocumentType) (*models.VerificationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[docKey{submissionID, docType}]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", docType, sentinel.ErrNotFound)
	}
	return &row, nil
}

func (s *InMemoryDocumentStore) ListBySubmission(_ context.Context, submissionID id.SubmissionID) ([]*models.VerificationDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.VerificationDocument
	for k, row := range s.rows {
		if k.submission == submissionID {
			r := row
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// Save upserts by (submission, type); an existing row keeps its id.
func (s *InMemoryDocumentStore) Save(_ context.Context, doc *models.VerificationDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := docKey{doc.SubmissionID, doc.Type}
	if existing, ok := s.rows[k]; ok && existing.ID != doc.ID {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
	}
	s.rows[k] = *doc
	return nil
}

// InMemoryPersonStore keeps persons keyed by id.
type InMemoryPersonStore struct {
	mu   sync.RWMutex
	rows map[id.PersonID]models.Person
}

func NewInMemoryPersonStore() *InMemoryPersonStore {
	return &InMemoryPersonStore{rows: make(map[id.PersonID]models.Person)}
}

func (s *InMemoryPersonStore) FindByID(_ context.Context, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[personID]
	if !ok {
		return nil, fmt.Errorf("person %s: %w", personID, sentinel.ErrNotFound)
	}
	return &row, nil
}

// ListBySubmission returns the control person first, then others by creation.
func (s *InMemoryPersonStore) ListBySubmission(_ context.Context, submissionID id.SubmissionID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Person
	for _, row := range s.rows {
		if row.SubmissionID == submissionID {
			r := row
			out = append(out, &r)
		}
	}
	sortPersons(out)
	return out, nil
}

func (s *InMemoryPersonStore) Save(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.ID] = *p
	return nil
}

func sortPersons(persons []*models.Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		ci, cj := persons[i].Role == models.RoleControl, persons[j].Role == models.RoleControl
		if ci != cj {
			return ci
		}
		if !persons[i].CreatedAt.Equal(persons[j].CreatedAt) {
			return persons[i].CreatedAt.Before(persons[j].CreatedAt)
		}
		return persons[i].ID.String() < persons[j].ID.String()
	})
}

// InMemoryIntegrationStore keeps one integration per subject.
type InMemoryIntegrationStore struct {
	mu   sync.RWMutex
	rows map[id.SubjectID]models.Integration
}

func NewInMemoryIntegrationStore() *InMemoryIntegrationStore {
	return &InMemoryIntegrationStore{rows: make(map[id.SubjectID]models.Integration)}
}

func (s *InMemoryIntegrationStore) FindBySubject(_ context.Context, subjectID id.SubjectID) (*models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[subjectID]
	if !ok {
		return nil, fmt.Errorf("integration for subject %s: %w", subjectID, sentinel.ErrNotFound)
	}
	return copyIntegration(row), nil
}

func (s *InMemoryIntegrationStore) Save(_ context.Context, in *models.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rows[in.SubjectID]; ok && existing.ID != in.ID {
		return fmt.Errorf("integration for subject %s: %w", in.SubjectID, sentinel.ErrConflict)
	}
	s.rows[in.SubjectID] = *copyIntegration(*in)
	return nil
}

func copyIntegration(in models.Integration) *models.Integration {
	out := in
	if in.Metadata != nil {
		out.Metadata = make(map[string]any, len(in.Metadata))
		for k, v := range in.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
