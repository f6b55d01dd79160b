// Package reconcile links local beneficial owners to the provider's associated
// person records without ever creating the same person twice.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"verigate/internal/provider"
	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/email"
	audit "verigate/pkg/platform/audit"
	"verigate/pkg/requestcontext"
)

// PersonStore persists reconciled persons.
type PersonStore interface {
	Save(ctx context.Context, person *models.Person) error
}

// IntegrationStore persists the issued verification link.
type IntegrationStore interface {
	Save(ctx context.Context, integration *models.Integration) error
}

// PayloadBuilder renders the provider payload for one person.
type PayloadBuilder interface {
	PersonPayload(ctx context.Context, person *models.Person) (provider.PersonPayload, error)
}

// PayloadBuilderFunc adapts a function to PayloadBuilder.
type PayloadBuilderFunc func(ctx context.Context, person *models.Person) (provider.PersonPayload, error)

func (f PayloadBuilderFunc) PersonPayload(ctx context.Context, person *models.Person) (provider.PersonPayload, error) {
	return f(ctx, person)
}

// Observer counts reconciliation actions.
type Observer interface {
	IncrementPersonReconcile(result string)
}

// Action is what happened to one person.
type Action string

const (
	ActionCreated Action = "created"
	ActionAdopted Action = "adopted"
	ActionFailed  Action = "failed"
)

// Batch is the set of persons to reconcile against one customer.
type Batch struct {
	CustomerID    string
	Integration   *models.Integration
	Submission    *models.Submission
	ControlPerson *models.Person
	Persons       []*models.Person
}

// PersonResult is the per-person outcome.
type PersonResult struct {
	PersonID id.PersonID
	Email    string
	RemoteID string
	Action   Action
	LinkURL  string
	Err      error
}

// Anomaly records a stored remote id that no longer exists remotely.
type Anomaly struct {
	PersonID      id.PersonID
	StaleRemoteID string
}

// Outcome summarizes a batch.
type Outcome struct {
	Results   []PersonResult
	Created   int
	Adopted   int
	Failed    int
	Anomalies []Anomaly
	// Responses maps remote person id to the provider body seen for it.
	Responses map[string]json.RawMessage
	LinkURL   string
	// ListErr is set when the remote person list could not be read; no
	// person is created in that case.
	ListErr *provider.Error
}

// Reconciler runs match-or-create over a batch.
type Reconciler struct {
	client       provider.Client
	persons      PersonStore
	integrations IntegrationStore
	payloads     PayloadBuilder
	logger       *slog.Logger
	observer     Observer
	auditor      audit.Emitter
	now          func() time.Time
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithObserver(o Observer) Option {
	return func(r *Reconciler) {
		r.observer = o
	}
}

func WithAuditor(a audit.Emitter) Option {
	return func(r *Reconciler) {
		r.auditor = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func New(client provider.Client, persons PersonStore, integrations IntegrationStore, payloads PayloadBuilder, opts ...Option) *Reconciler {
	r := &Reconciler{
		client:       client,
		persons:      persons,
		integrations: integrations,
		payloads:     payloads,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// remoteIndex holds the remote persons known during one batch.
type remoteIndex struct {
	byEmail map[string]string
	byID    map[string]json.RawMessage
}

func newRemoteIndex(snapshots []provider.PersonSnapshot) *remoteIndex {
	idx := &remoteIndex{byEmail: map[string]string{}, byID: map[string]json.RawMessage{}}
	for _, s := range snapshots {
		idx.add(s.ID, s.Email, s.Raw)
	}
	return idx
}

func (idx *remoteIndex) add(remoteID, address string, raw json.RawMessage) {
	if remoteID == "" {
		return
	}
	idx.byID[remoteID] = raw
	if key := email.Normalize(address); key != "" {
		if _, taken := idx.byEmail[key]; !taken {
			idx.byEmail[key] = remoteID
		}
	}
}

// Reconcile matches every person in the batch to a remote record, creating
// only those with no match. Per-person failures are recorded on the outcome
// and never abort the batch.
func (r *Reconciler) Reconcile(ctx context.Context, b Batch) (*Outcome, error) {
	if b.CustomerID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reconcile requires a customer id")
	}
	out := &Outcome{Responses: map[string]json.RawMessage{}}
	persons := orderedPersons(b)
	if len(persons) == 0 {
		return out, nil
	}

	listed := r.client.ListAssociatedPersons(ctx, b.CustomerID)
	snapshots, ok := listed.Value()
	if !ok {
		out.ListErr = listed.Err()
		r.logger.ErrorContext(ctx, "failed to list associated persons, skipping reconciliation",
			"customer_id", b.CustomerID,
			"request_id", requestcontext.RequestID(ctx),
			"error", listed.Err(),
		)
		for _, p := range persons {
			r.fail(ctx, b, out, p, "", listed.Err())
		}
		return out, nil
	}
	idx := newRemoteIndex(snapshots)

	for _, p := range persons {
		r.reconcileOne(ctx, b, idx, out, p)
	}

	if out.LinkURL != "" && b.Integration != nil {
		b.Integration.VerificationLinkURL = out.LinkURL
		b.Integration.UpdatedAt = r.now()
		if err := r.integrations.Save(ctx, b.Integration); err != nil {
			r.logger.ErrorContext(ctx, "failed to persist verification link on integration",
				"customer_id", b.CustomerID,
				"error", err,
			)
		}
	}
	return out, nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, b Batch, idx *remoteIndex, out *Outcome, p *models.Person) {
	payload, err := r.payloads.PersonPayload(ctx, p)
	if err != nil {
		r.fail(ctx, b, out, p, "", err)
		return
	}

	remoteID, action := r.match(ctx, b, idx, out, p)
	if remoteID == "" {
		created := r.client.CreateAssociatedPerson(ctx, b.CustomerID, payload)
		ref, ok := created.Value()
		if !ok {
			r.fail(ctx, b, out, p, "", created.Err())
			return
		}
		remoteID, action = ref.ID, ActionCreated
		idx.add(ref.ID, firstNonEmpty(ref.Email, p.Email), ref.Raw)
	}
	if raw := idx.byID[remoteID]; len(raw) > 0 {
		out.Responses[remoteID] = raw
	}

	now := r.now()
	p.RemoteID = remoteID
	ssn, idType, idNumber := identityFromPayload(payload)
	p.BackfillIdentity(ssn, idType, idNumber)
	p.UpdatedAt = now
	if err := r.persons.Save(ctx, p); err != nil {
		r.fail(ctx, b, out, p, remoteID, err)
		return
	}
	r.propagateToControl(ctx, b, p, remoteID)

	link := r.client.IssueVerificationLink(ctx, b.CustomerID)
	ref, ok := link.Value()
	if !ok {
		r.fail(ctx, b, out, p, remoteID, link.Err())
		return
	}
	p.VerificationLinkURL = ref.URL
	if err := r.persons.Save(ctx, p); err != nil {
		r.fail(ctx, b, out, p, remoteID, err)
		return
	}
	out.LinkURL = ref.URL

	switch action {
	case ActionCreated:
		out.Created++
	case ActionAdopted:
		out.Adopted++
	}
	r.count(string(action))
	out.Results = append(out.Results, PersonResult{
		PersonID: p.ID,
		Email:    p.Email,
		RemoteID: remoteID,
		Action:   action,
		LinkURL:  ref.URL,
	})
	r.logger.InfoContext(ctx, "associated person reconciled",
		"customer_id", b.CustomerID,
		"person_id", p.ID.String(),
		"remote_id", remoteID,
		"action", string(action),
	)
}

// match returns the remote id to adopt, or "" when the person must be created.
// An email match is authoritative; a stored remote id is only kept when no
// remote record carries the person's email.
func (r *Reconciler) match(ctx context.Context, b Batch, idx *remoteIndex, out *Outcome, p *models.Person) (string, Action) {
	if key := p.NormalizedEmail(); key != "" {
		if remoteID, ok := idx.byEmail[key]; ok {
			return remoteID, ActionAdopted
		}
	}
	if p.HasRemoteID() {
		if _, ok := idx.byID[p.RemoteID]; ok {
			return p.RemoteID, ActionAdopted
		}
		r.anomaly(ctx, b, out, p)
	}
	return "", ""
}

func (r *Reconciler) propagateToControl(ctx context.Context, b Batch, p *models.Person, remoteID string) {
	control := b.ControlPerson
	if control == nil || control == p || control.ID == p.ID {
		return
	}
	if !email.Equal(control.Email, p.Email) || control.RemoteID == remoteID {
		return
	}
	control.RemoteID = remoteID
	control.UpdatedAt = r.now()
	if err := r.persons.Save(ctx, control); err != nil {
		r.logger.ErrorContext(ctx, "failed to propagate remote id to control person",
			"customer_id", b.CustomerID,
			"person_id", control.ID.String(),
			"error", err,
		)
	}
}

func (r *Reconciler) anomaly(ctx context.Context, b Batch, out *Outcome, p *models.Person) {
	out.Anomalies = append(out.Anomalies, Anomaly{PersonID: p.ID, StaleRemoteID: p.RemoteID})
	r.count("stale")
	r.logger.WarnContext(ctx, "stored remote person id no longer exists at provider",
		"anomaly", true,
		"customer_id", b.CustomerID,
		"person_id", p.ID.String(),
		"stale_remote_id", p.RemoteID,
		"request_id", requestcontext.RequestID(ctx),
	)
	r.emit(ctx, b, audit.EventPersonRemoteIDStale, "", map[string]string{
		"person_id":       p.ID.String(),
		"stale_remote_id": p.RemoteID,
	})
}

func (r *Reconciler) fail(ctx context.Context, b Batch, out *Outcome, p *models.Person, remoteID string, err error) {
	out.Failed++
	out.Results = append(out.Results, PersonResult{
		PersonID: p.ID,
		Email:    p.Email,
		RemoteID: remoteID,
		Action:   ActionFailed,
		Err:      err,
	})
	r.count(string(ActionFailed))
	r.logger.WarnContext(ctx, "associated person reconciliation failed",
		"customer_id", b.CustomerID,
		"person_id", p.ID.String(),
		"remote_id", remoteID,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	detail := map[string]string{"person_id": p.ID.String()}
	var pe *provider.Error
	if errors.As(err, &pe) {
		detail["operation"] = string(pe.Operation)
		detail["category"] = string(pe.Category)
	}
	r.emit(ctx, b, audit.EventPersonReconcileFail, err.Error(), detail)
}

func (r *Reconciler) emit(ctx context.Context, b Batch, action audit.AuditEvent, reason string, detail map[string]string) {
	if r.auditor == nil {
		return
	}
	event := audit.Event{
		Action:    string(action),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: r.now(),
		Detail:    detail,
	}
	if b.Submission != nil {
		event.SubjectID = b.Submission.SubjectID
		event.SubmissionID = b.Submission.ID.String()
	}
	if err := r.auditor.Emit(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "failed to emit audit event", "action", string(action), "error", err)
	}
}

func (r *Reconciler) count(result string) {
	if r.observer != nil {
		r.observer.IncrementPersonReconcile(result)
	}
}

// orderedPersons puts the control person first and drops duplicates of it.
func orderedPersons(b Batch) []*models.Person {
	out := make([]*models.Person, 0, len(b.Persons)+1)
	if b.ControlPerson != nil {
		out = append(out, b.ControlPerson)
	}
	for _, p := range b.Persons {
		if p == nil {
			continue
		}
		if b.ControlPerson != nil && (p == b.ControlPerson || p.ID == b.ControlPerson.ID) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func identityFromPayload(payload provider.PersonPayload) (ssn string, idType models.IDType, idNumber string) {
	for _, info := range payload.IdentifyingInformation {
		switch info.Type {
		case "ssn":
			if ssn == "" {
				ssn = info.Number
			}
		default:
			if idType == "" && info.Number != "" {
				idType = models.ParseIDType(info.Type)
				idNumber = info.Number
			}
		}
	}
	return ssn, idType, idNumber
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
