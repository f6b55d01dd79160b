// Package fake is an in-memory provider used for local development and
// stateful tests.
package fake

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"verigate/internal/provider"
	"verigate/pkg/email"
)

type customer struct {
	id      string
	payload provider.CustomerPayload
	status  string
	persons []personRecord
}

type personRecord struct {
	id      string
	payload provider.PersonPayload
}

// Provider is a thread-safe in-memory provider.Client.
type Provider struct {
	mu            sync.Mutex
	customers     map[string]*customer
	webhooks      []provider.WebhookRef
	statusOnWrite string
	failures      map[provider.Operation][]*provider.Error
	calls         map[provider.Operation]int
	seq           int
	linkBase      string
}

// Option configures the fake.
type Option func(*Provider)

// WithStatus sets the status customers report after create or update.
func WithStatus(status string) Option {
	return func(p *Provider) {
		p.statusOnWrite = status
	}
}

// WithLinkBase sets the prefix of issued verification links.
func WithLinkBase(base string) Option {
	return func(p *Provider) {
		p.linkBase = base
	}
}

// WithWebhooks seeds the webhook list.
func WithWebhooks(hooks ...provider.WebhookRef) Option {
	return func(p *Provider) {
		p.webhooks = append(p.webhooks, hooks...)
	}
}

// New returns an empty fake provider. Customers report "under_review" unless
// configured otherwise.
func New(opts ...Option) *Provider {
	p := &Provider{
		customers:     make(map[string]*customer),
		statusOnWrite: "under_review",
		failures:      make(map[provider.Operation][]*provider.Error),
		calls:         make(map[provider.Operation]int),
		linkBase:      "https://verify.example.test/link/",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ provider.Client = (*Provider)(nil)

// SetStatus changes the status reported for future writes and for reads of
// existing customers.
func (p *Provider) SetStatus(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusOnWrite = status
	for _, c := range p.customers {
		c.status = status
	}
}

// SetCustomerStatus changes the status of a single customer.
func (p *Provider) SetCustomerStatus(customerID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.customers[customerID]; ok {
		c.status = status
	}
}

// FailNext queues err for the next call of op. Queued failures are consumed
// in order.
func (p *Provider) FailNext(op provider.Operation, err *provider.Error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err.Operation == "" {
		err.Operation = op
	}
	p.failures[op] = append(p.failures[op], err)
}

// Calls returns how many times op was invoked.
func (p *Provider) Calls(op provider.Operation) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

// SeedCustomer registers an existing remote customer.
func (p *Provider) SeedCustomer(id string, payload provider.CustomerPayload, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customers[id] = &customer{id: id, payload: payload, status: status}
}

// SeedPerson registers an existing remote associated person and returns its id.
func (p *Provider) SeedPerson(customerID string, payload provider.PersonPayload) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.customers[customerID]
	if !ok {
		c = &customer{id: customerID, status: p.statusOnWrite}
		p.customers[customerID] = c
	}
	id := p.nextID("per")
	c.persons = append(c.persons, personRecord{id: id, payload: payload})
	return id
}

// PersonCount reports how many associated persons exist remotely.
func (p *Provider) PersonCount(customerID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.customers[customerID]; ok {
		return len(c.persons)
	}
	return 0
}

// LastPayload returns the latest payload written for a customer.
func (p *Provider) LastPayload(customerID string) (provider.CustomerPayload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.customers[customerID]
	if !ok {
		return provider.CustomerPayload{}, false
	}
	return c.payload, true
}

// CustomerIDs lists known customer ids in sorted order.
func (p *Provider) CustomerIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.customers))
	for id := range p.customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Provider) CreateCustomer(_ context.Context, payload provider.CustomerPayload) provider.Result[provider.CustomerRef] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpCreateCustomer); err != nil {
		return provider.Fail[provider.CustomerRef](err)
	}
	if payload.Type == "" {
		return provider.Fail[provider.CustomerRef](provider.NewError(provider.ErrorValidation, provider.OpCreateCustomer, "type is required", nil).WithStatus(400))
	}
	c := &customer{id: p.nextID("cus"), payload: payload, status: p.statusOnWrite}
	p.customers[c.id] = c
	return provider.Ok(c.ref())
}

func (p *Provider) UpdateCustomer(_ context.Context, customerID string, payload provider.CustomerPayload) provider.Result[provider.CustomerRef] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpUpdateCustomer); err != nil {
		return provider.Fail[provider.CustomerRef](err)
	}
	c, ok := p.customers[customerID]
	if !ok {
		return provider.Fail[provider.CustomerRef](notFound(provider.OpUpdateCustomer, customerID))
	}
	c.payload = payload
	c.status = p.statusOnWrite
	return provider.Ok(c.ref())
}

func (p *Provider) GetCustomer(_ context.Context, customerID string) provider.Result[provider.CustomerSnapshot] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpGetCustomer); err != nil {
		return provider.Fail[provider.CustomerSnapshot](err)
	}
	c, ok := p.customers[customerID]
	if !ok {
		return provider.Fail[provider.CustomerSnapshot](notFound(provider.OpGetCustomer, customerID))
	}
	snap := provider.CustomerSnapshot{ID: c.id, Type: c.payload.Type, Email: c.payload.Email, Status: c.status}
	snap.Raw = mustRaw(snap)
	return provider.Ok(snap)
}

func (p *Provider) ListAssociatedPersons(_ context.Context, customerID string) provider.Result[[]provider.PersonSnapshot] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpListAssociatedPersons); err != nil {
		return provider.Fail[[]provider.PersonSnapshot](err)
	}
	c, ok := p.customers[customerID]
	if !ok {
		return provider.Fail[[]provider.PersonSnapshot](notFound(provider.OpListAssociatedPersons, customerID))
	}
	out := make([]provider.PersonSnapshot, 0, len(c.persons))
	for _, rec := range c.persons {
		snap := provider.PersonSnapshot{ID: rec.id, Email: rec.payload.Email}
		snap.Raw = mustRaw(snap)
		out = append(out, snap)
	}
	return provider.Ok(out)
}

func (p *Provider) CreateAssociatedPerson(_ context.Context, customerID string, payload provider.PersonPayload) provider.Result[provider.PersonRef] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpCreateAssociatedPerson); err != nil {
		return provider.Fail[provider.PersonRef](err)
	}
	c, ok := p.customers[customerID]
	if !ok {
		return provider.Fail[provider.PersonRef](notFound(provider.OpCreateAssociatedPerson, customerID))
	}
	for _, rec := range c.persons {
		if email.Equal(rec.payload.Email, payload.Email) {
			return provider.Fail[provider.PersonRef](provider.NewError(provider.ErrorValidation, provider.OpCreateAssociatedPerson, "associated person with this email already exists", nil).WithStatus(422))
		}
	}
	rec := personRecord{id: p.nextID("per"), payload: payload}
	c.persons = append(c.persons, rec)
	ref := provider.PersonRef{ID: rec.id, Email: payload.Email}
	ref.Raw = mustRaw(ref)
	return provider.Ok(ref)
}

func (p *Provider) IssueVerificationLink(_ context.Context, customerID string) provider.Result[provider.LinkRef] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpIssueVerificationLink); err != nil {
		return provider.Fail[provider.LinkRef](err)
	}
	if _, ok := p.customers[customerID]; !ok {
		return provider.Fail[provider.LinkRef](notFound(provider.OpIssueVerificationLink, customerID))
	}
	link := provider.LinkRef{URL: p.linkBase + customerID}
	link.Raw = mustRaw(link)
	return provider.Ok(link)
}

func (p *Provider) ListWebhooks(_ context.Context) provider.Result[[]provider.WebhookRef] {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(provider.OpListWebhooks); err != nil {
		return provider.Fail[[]provider.WebhookRef](err)
	}
	out := make([]provider.WebhookRef, len(p.webhooks))
	copy(out, p.webhooks)
	return provider.Ok(out)
}

// enter counts the call and pops an injected failure. Callers hold p.mu.
func (p *Provider) enter(op provider.Operation) *provider.Error {
	p.calls[op]++
	queue := p.failures[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	p.failures[op] = queue[1:]
	return err
}

func (p *Provider) nextID(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s_%06d", prefix, p.seq)
}

func (c *customer) ref() provider.CustomerRef {
	ref := provider.CustomerRef{ID: c.id, Status: c.status}
	ref.Raw = mustRaw(ref)
	return ref
}

func notFound(op provider.Operation, id string) *provider.Error {
	return provider.NewError(provider.ErrorNotFound, op, "customer "+id+" not found", nil).WithStatus(404)
}

func mustRaw(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
