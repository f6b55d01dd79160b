package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
	txcontext "verigate/pkg/platform/tx"
)

const pqUniqueViolation = "23505"

// PostgresSubmissionStore persists submissions. All stores join the
// transaction bound to the context, if any.
type PostgresSubmissionStore struct {
	db *sql.DB
}

func NewPostgresSubmissionStore(db *sql.DB) *PostgresSubmissionStore {
	return &PostgresSubmissionStore{db: db}
}

func (s *PostgresSubmissionStore) FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	query := `
		SELECT id, subject_id, subject_type, status, data, provider_customer_id,
			provider_response, requested_fields, request_message, rejection_reason,
			created_at, updated_at, approved_at, approved_by, rejected_at, rejected_by
		FROM submissions
		WHERE id = $1
	`
	var (
		sub         models.Submission
		subID       uuid.UUID
		subjectID   uuid.UUID
		data        []byte
		snapshot    []byte
		requested   pq.StringArray
		approvedBy  uuid.NullUUID
		rejectedBy  uuid.NullUUID
		approvedAt  sql.NullTime
		rejectedAt  sql.NullTime
		subjectType string
		status      string
	)
	err := txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(submissionID)).Scan(
		&subID, &subjectID, &subjectType, &status, &data, &sub.ProviderCustomerID,
		&snapshot, &requested, &sub.RequestMessage, &sub.RejectionReason,
		&sub.CreatedAt, &sub.UpdatedAt, &approvedAt, &approvedBy, &rejectedAt, &rejectedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission %s: %w", submissionID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	sub.ID = id.SubmissionID(subID)
	sub.SubjectID = id.SubjectID(subjectID)
	sub.SubjectType = models.SubjectType(subjectType)
	sub.Status = models.Status(status)
	sub.RequestedFields = []string(requested)
	if err := json.Unmarshal(data, &sub.Data); err != nil {
		return nil, fmt.Errorf("decode submission data: %w", err)
	}
	if sub.Data == nil {
		sub.Data = models.Data{}
	}
	if len(snapshot) > 0 {
		sub.ProviderResponse = &models.ProviderSnapshot{}
		if err := json.Unmarshal(snapshot, sub.ProviderResponse); err != nil {
			return nil, fmt.Errorf("decode provider response: %w", err)
		}
	}
	sub.ApprovedAt = nullTime(approvedAt)
	sub.RejectedAt = nullTime(rejectedAt)
	sub.ApprovedBy = nullActor(approvedBy)
	sub.RejectedBy = nullActor(rejectedBy)
	return &sub, nil
}

func (s *PostgresSubmissionStore) Save(ctx context.Context, sub *models.Submission) error {
	data, err := json.Marshal(sub.Data)
	if err != nil {
		return fmt.Errorf("encode submission data: %w", err)
	}
	var snapshot []byte
	if sub.ProviderResponse != nil {
		if snapshot, err = json.Marshal(sub.ProviderResponse); err != nil {
			return fmt.Errorf("encode provider response: %w", err)
		}
	}
	requested := sub.RequestedFields
	if requested == nil {
		requested = []string{}
	}
	query := `
		INSERT INTO submissions (
			id, subject_id, subject_type, status, data, provider_customer_id,
			provider_response, requested_fields, request_message, rejection_reason,
			created_at, updated_at, approved_at, approved_by, rejected_at, rejected_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			data = EXCLUDED.data,
			provider_customer_id = EXCLUDED.provider_customer_id,
			provider_response = EXCLUDED.provider_response,
			requested_fields = EXCLUDED.requested_fields,
			request_message = EXCLUDED.request_message,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = EXCLUDED.updated_at,
			approved_at = EXCLUDED.approved_at,
			approved_by = EXCLUDED.approved_by,
			rejected_at = EXCLUDED.rejected_at,
			rejected_by = EXCLUDED.rejected_by
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(sub.ID), uuid.UUID(sub.SubjectID), string(sub.SubjectType), string(sub.Status),
		data, sub.ProviderCustomerID, nullJSON(snapshot), pq.Array(requested),
		sub.RequestMessage, sub.RejectionReason, sub.CreatedAt, sub.UpdatedAt,
		sub.ApprovedAt, actorParam(sub.ApprovedBy), sub.RejectedAt, actorParam(sub.RejectedBy),
	)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

// PostgresDocumentStore persists document review rows.
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

const documentColumns = `id, submission_id, doc_type, file_ref, review_status, reviewed_by,
	reviewed_at, rejection_reason, created_at, updated_at`

func (s *PostgresDocumentStore) FindBySubmissionAndType(ctx context.Context, submissionID id.SubmissionID, docType models.DocumentType) (*models.VerificationDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM verification_documents WHERE submission_id = $1 AND doc_type = $2`
	row := txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(submissionID), string(docType))
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", docType, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return doc, nil
}

func (s *PostgresDocumentStore) ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM verification_documents WHERE submission_id = $1 ORDER BY doc_type`
	rows, err := txcontext.ExecutorFor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.VerificationDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Save upserts on (submission_id, doc_type); the stored id is written back.
func (s *PostgresDocumentStore) Save(ctx context.Context, doc *models.VerificationDocument) error {
	query := `
		INSERT INTO verification_documents (
			id, submission_id, doc_type, file_ref, review_status, reviewed_by,
			reviewed_at, rejection_reason, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (submission_id, doc_type) DO UPDATE SET
			file_ref = EXCLUDED.file_ref,
			review_status = EXCLUDED.review_status,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at,
			rejection_reason = EXCLUDED.rejection_reason,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	var storedID uuid.UUID
	err := txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(doc.ID), uuid.UUID(doc.SubmissionID), string(doc.Type), string(doc.FileRef),
		string(doc.ReviewStatus), actorParam(doc.ReviewedBy), doc.ReviewedAt, doc.RejectionReason,
		doc.CreatedAt, doc.UpdatedAt,
	).Scan(&storedID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	doc.ID = id.DocumentID(storedID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.VerificationDocument, error) {
	var (
		doc        models.VerificationDocument
		docID      uuid.UUID
		subID      uuid.UUID
		docType    string
		fileRef    string
		status     string
		reviewedBy uuid.NullUUID
		reviewedAt sql.NullTime
	)
	if err := row.Scan(&docID, &subID, &docType, &fileRef, &status, &reviewedBy,
		&reviewedAt, &doc.RejectionReason, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.ID = id.DocumentID(docID)
	doc.SubmissionID = id.SubmissionID(subID)
	doc.Type = models.DocumentType(docType)
	doc.FileRef = models.FileRef(fileRef)
	doc.ReviewStatus = models.ReviewStatus(status)
	doc.ReviewedBy = nullActor(reviewedBy)
	doc.ReviewedAt = nullTime(reviewedAt)
	return &doc, nil
}

// PostgresPersonStore persists control and associated persons.
type PostgresPersonStore struct {
	db *sql.DB
}

func NewPostgresPersonStore(db *sql.DB) *PostgresPersonStore {
	return &PostgresPersonStore{db: db}
}

const personColumns = `id, submission_id, role, first_name, last_name, email, birth_date, title,
	ownership_percentage, has_ownership, has_control, is_signer, address, ssn, id_type,
	id_number, id_issuing_country, id_front_ref, id_back_ref, remote_id,
	verification_link_url, created_at, updated_at`

func (s *PostgresPersonStore) FindByID(ctx context.Context, personID id.PersonID) (*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`
	p, err := scanPerson(txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(personID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("person %s: %w", personID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find person: %w", err)
	}
	return p, nil
}

// ListBySubmission returns the control person first, then others by creation.
func (s *PostgresPersonStore) ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE submission_id = $1
		ORDER BY (role = 'control') DESC, created_at ASC, id ASC`
	rows, err := txcontext.ExecutorFor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(submissionID))
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var out []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

func (s *PostgresPersonStore) Save(ctx context.Context, p *models.Person) error {
	address, err := json.Marshal(p.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	query := `
		INSERT INTO persons (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (id) DO UPDATE SET
			role = EXCLUDED.role,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			birth_date = EXCLUDED.birth_date,
			title = EXCLUDED.title,
			ownership_percentage = EXCLUDED.ownership_percentage,
			has_ownership = EXCLUDED.has_ownership,
			has_control = EXCLUDED.has_control,
			is_signer = EXCLUDED.is_signer,
			address = EXCLUDED.address,
			ssn = EXCLUDED.ssn,
			id_type = EXCLUDED.id_type,
			id_number = EXCLUDED.id_number,
			id_issuing_country = EXCLUDED.id_issuing_country,
			id_front_ref = EXCLUDED.id_front_ref,
			id_back_ref = EXCLUDED.id_back_ref,
			remote_id = EXCLUDED.remote_id,
			verification_link_url = EXCLUDED.verification_link_url,
			updated_at = EXCLUDED.updated_at
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.SubmissionID), string(p.Role), p.FirstName, p.LastName,
		p.Email, p.BirthDate, p.Title, p.OwnershipPercentage, p.HasOwnership, p.HasControl,
		p.IsSigner, address, p.SSN, string(p.IDType), p.IDNumber, p.IDIssuingCountry,
		string(p.IDFrontRef), string(p.IDBackRef), p.RemoteID, p.VerificationLinkURL,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p        models.Person
		personID uuid.UUID
		subID    uuid.UUID
		role     string
		address  []byte
		idType   string
		front    string
		back     string
	)
	if err := row.Scan(&personID, &subID, &role, &p.FirstName, &p.LastName, &p.Email,
		&p.BirthDate, &p.Title, &p.OwnershipPercentage, &p.HasOwnership, &p.HasControl,
		&p.IsSigner, &address, &p.SSN, &idType, &p.IDNumber, &p.IDIssuingCountry,
		&front, &back, &p.RemoteID, &p.VerificationLinkURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.PersonID(personID)
	p.SubmissionID = id.SubmissionID(subID)
	p.Role = models.PersonRole(role)
	p.IDType = models.IDType(idType)
	p.IDFrontRef = models.FileRef(front)
	p.IDBackRef = models.FileRef(back)
	if len(address) > 0 {
		if err := json.Unmarshal(address, &p.Address); err != nil {
			return nil, fmt.Errorf("decode address: %w", err)
		}
	}
	return &p, nil
}

// PostgresIntegrationStore persists one integration per subject.
type PostgresIntegrationStore struct {
	db *sql.DB
}

func NewPostgresIntegrationStore(db *sql.DB) *PostgresIntegrationStore {
	return &PostgresIntegrationStore{db: db}
}

func (s *PostgresIntegrationStore) FindBySubject(ctx context.Context, subjectID id.SubjectID) (*models.Integration, error) {
	query := `
		SELECT id, subject_id, provider_customer_id, kyc_status, kyb_status, metadata,
			verification_link_url, provisioned_at, created_at, updated_at
		FROM integrations
		WHERE subject_id = $1
	`
	var (
		in          models.Integration
		inID        uuid.UUID
		subID       uuid.UUID
		kyc         string
		kyb         string
		metadata    []byte
		provisioned sql.NullTime
	)
	err := txcontext.ExecutorFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(subjectID)).Scan(
		&inID, &subID, &in.ProviderCustomerID, &kyc, &kyb, &metadata,
		&in.VerificationLinkURL, &provisioned, &in.CreatedAt, &in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("integration for subject %s: %w", subjectID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find integration: %w", err)
	}
	in.ID = id.IntegrationID(inID)
	in.SubjectID = id.SubjectID(subID)
	in.KYCStatus = models.Status(kyc)
	in.KYBStatus = models.Status(kyb)
	in.ProvisionedAt = nullTime(provisioned)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &in.Metadata); err != nil {
			return nil, fmt.Errorf("decode integration metadata: %w", err)
		}
	}
	return &in, nil
}

// Save upserts by id. A second integration for the same subject is a conflict.
func (s *PostgresIntegrationStore) Save(ctx context.Context, in *models.Integration) error {
	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encode integration metadata: %w", err)
	}
	query := `
		INSERT INTO integrations (
			id, subject_id, provider_customer_id, kyc_status, kyb_status, metadata,
			verification_link_url, provisioned_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			provider_customer_id = EXCLUDED.provider_customer_id,
			kyc_status = EXCLUDED.kyc_status,
			kyb_status = EXCLUDED.kyb_status,
			metadata = EXCLUDED.metadata,
			verification_link_url = EXCLUDED.verification_link_url,
			provisioned_at = EXCLUDED.provisioned_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err = txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(in.ID), uuid.UUID(in.SubjectID), in.ProviderCustomerID, string(in.KYCStatus),
		string(in.KYBStatus), encoded, in.VerificationLinkURL, in.ProvisionedAt,
		in.CreatedAt, in.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("integration for subject %s: %w", in.SubjectID, sentinel.ErrConflict)
		}
		return fmt.Errorf("save integration: %w", err)
	}
	return nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullActor(u uuid.NullUUID) *id.ActorID {
	if !u.Valid {
		return nil
	}
	a := id.ActorID(u.UUID)
	return &a
}

func actorParam(a *id.ActorID) any {
	if a == nil {
		return nil
	}
	return uuid.UUID(*a)
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
