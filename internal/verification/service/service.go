// Package service orchestrates admin transitions on verification submissions
// and keeps the local Integration in step with the provider's customer record.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"verigate/internal/provider"
	"verigate/internal/provisioning"
	"verigate/internal/verification/documents"
	"verigate/internal/verification/lock"
	"verigate/internal/verification/metrics"
	"verigate/internal/verification/models"
	"verigate/internal/verification/reconcile"
	"verigate/internal/verification/store"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	audit "verigate/pkg/platform/audit"
	"verigate/pkg/platform/middleware/metadata"
	"verigate/pkg/platform/sentinel"
	"verigate/pkg/requestcontext"
)

type SubmissionStore interface {
	FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error)
	Save(ctx context.Context, sub *models.Submission) error
}

type DocumentStore interface {
	FindBySubmissionAndType(ctx context.Context, submissionID id.SubmissionID, docType models.DocumentType) (*models.VerificationDocument, error)
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.VerificationDocument, error)
	Save(ctx context.Context, doc *models.VerificationDocument) error
}

type PersonStore interface {
	ListBySubmission(ctx context.Context, submissionID id.SubmissionID) ([]*models.Person, error)
	Save(ctx context.Context, person *models.Person) error
}

type IntegrationStore interface {
	FindBySubject(ctx context.Context, subjectID id.SubjectID) (*models.Integration, error)
	Save(ctx context.Context, integration *models.Integration) error
}

// StoreTx provides a transactional boundary. Stores called with the ctx passed
// to fn join the transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stores groups the persistence dependencies.
type Stores struct {
	Submissions  SubmissionStore
	Documents    DocumentStore
	Persons      PersonStore
	Integrations IntegrationStore
}

// Service implements Approve, Reject, RequestMoreInfo and ReviewDocument.
type Service struct {
	stores      Stores
	tx          StoreTx
	provider    provider.Client
	files       documents.FileStore
	resolver    *documents.Resolver
	reconciler  *reconcile.Reconciler
	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     audit.Emitter
	provisioner provisioning.Provisioner
	locker      lock.Locker
	clock       func() time.Time
	tracer      trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(a audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithProvisioner(p provisioning.Provisioner) Option {
	return func(s *Service) {
		if p != nil {
			s.provisioner = p
		}
	}
}

// WithLocker serializes transitions per subject. Without it concurrent
// approvals are coordinated only by the database.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithClock overrides the request-scoped time, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(stores Stores, tx StoreTx, client provider.Client, files documents.FileStore, opts ...Option) *Service {
	s := &Service{
		stores:      stores,
		tx:          tx,
		provider:    client,
		files:       files,
		resolver:    documents.NewResolver(stores.Documents, stores.Submissions),
		logger:      slog.Default(),
		provisioner: provisioning.Noop{},
		tracer:      otel.Tracer("verigate/verification"),
	}
	for _, opt := range opts {
		opt(s)
	}

	recOpts := []reconcile.Option{
		reconcile.WithLogger(s.logger),
		reconcile.WithObserver(s.metrics),
		reconcile.WithClock(s.clock),
	}
	if s.auditor != nil {
		recOpts = append(recOpts, reconcile.WithAuditor(s.auditor))
	}
	s.reconciler = reconcile.New(client, stores.Persons, stores.Integrations,
		reconcile.PayloadBuilderFunc(s.personPayload), recOpts...)
	return s
}

func (s *Service) now(ctx context.Context) time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return requestcontext.Now(ctx)
}

// inTx runs fn in a transaction routed by subject.
func (s *Service) inTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context) error) error {
	return s.tx.RunInTx(store.WithShardKey(ctx, subjectID.String()), fn)
}

// lockSubject acquires the per-subject lock when a locker is configured.
func (s *Service) lockSubject(ctx context.Context, subjectID id.SubjectID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.Acquire(ctx, lock.SubjectKey(subjectID))
	if err != nil {
		if errors.Is(err, sentinel.ErrLocked) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "another transition is in progress for this subject")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire subject lock")
	}
	return func() {
		// The request ctx may already be done; release on a fresh one.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := release(relCtx); err != nil {
			s.logger.WarnContext(ctx, "failed to release subject lock",
				"subject_id", subjectID.String(),
				"error", err,
			)
		}
	}, nil
}

func (s *Service) loadSubmission(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	sub, err := s.stores.Submissions.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	return sub, nil
}

// loadIntegration returns nil, nil when the subject has never been linked.
func (s *Service) loadIntegration(ctx context.Context, subjectID id.SubjectID) (*models.Integration, error) {
	in, err := s.stores.Integrations.FindBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load integration")
	}
	return in, nil
}

func (s *Service) emit(ctx context.Context, sub *models.Submission, action audit.AuditEvent, decision, reason string, detail map[string]string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		SubjectID:    sub.SubjectID,
		SubmissionID: sub.ID.String(),
		Action:       string(action),
		Decision:     decision,
		Reason:       reason,
		RequestID:    requestcontext.RequestID(ctx),
		Timestamp:    s.now(ctx),
		Detail:       detail,
	}
	if actor := requestcontext.ActorID(ctx); !actor.IsNil() {
		event.ActorID = actor.String()
	}
	if ip := metadata.GetClientIP(ctx); ip != "" {
		event.Detail = withDetail(event.Detail, "client_ip", ip)
	}
	if label := metadata.ClientLabel(metadata.GetUserAgent(ctx)); label != "" {
		event.Detail = withDetail(event.Detail, "client", label)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(action),
			"submission_id", sub.ID.String(),
			"error", err,
		)
	}
}

func withDetail(detail map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(detail)+1)
	for k, v := range detail {
		out[k] = v
	}
	out[key] = value
	return out
}
