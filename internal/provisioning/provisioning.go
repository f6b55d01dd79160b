// Package provisioning notifies downstream systems when a subject is approved
// for the first time. Delivery is best effort: the approval stands whether or
// not provisioning succeeds.
package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"verigate/internal/verification/models"
	"verigate/pkg/requestcontext"
)

// Provisioner provisions accounts for an approved subject.
type Provisioner interface {
	Provision(ctx context.Context, integration *models.Integration, providerCustomerID string) error
}

// Noop discards provisioning requests. Used when Kafka is not configured.
type Noop struct{}

func (Noop) Provision(context.Context, *models.Integration, string) error { return nil }

// Event is the message body published for each approved subject.
type Event struct {
	EventID            string    `json:"event_id"`
	Type               string    `json:"type"`
	SubjectID          string    `json:"subject_id"`
	IntegrationID      string    `json:"integration_id"`
	ProviderCustomerID string    `json:"provider_customer_id"`
	RequestID          string    `json:"request_id,omitempty"`
	OccurredAt         time.Time `json:"occurred_at"`
}

const EventTypeSubjectApproved = "subject.approved"

// producer is the subset of *kgo.Client the provisioner uses.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaProvisioner publishes one Event per approval, keyed by subject id so
// events for a subject stay ordered on one partition.
type KafkaProvisioner struct {
	client producer
	topic  string
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*KafkaProvisioner)

func WithLogger(logger *slog.Logger) Option {
	return func(p *KafkaProvisioner) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *KafkaProvisioner) {
		p.now = now
	}
}

func NewKafkaProvisioner(client *kgo.Client, topic string, opts ...Option) *KafkaProvisioner {
	return newKafkaProvisioner(client, topic, opts...)
}

func newKafkaProvisioner(client producer, topic string, opts ...Option) *KafkaProvisioner {
	p := &KafkaProvisioner{
		client: client,
		topic:  topic,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaProvisioner) Provision(ctx context.Context, integration *models.Integration, providerCustomerID string) error {
	event := Event{
		EventID:            uuid.NewString(),
		Type:               EventTypeSubjectApproved,
		SubjectID:          integration.SubjectID.String(),
		IntegrationID:      uuid.UUID(integration.ID).String(),
		ProviderCustomerID: providerCustomerID,
		RequestID:          requestcontext.RequestID(ctx),
		OccurredAt:         p.now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal provisioning event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SubjectID),
		Value: body,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce provisioning event: %w", err)
	}
	p.logger.InfoContext(ctx, "provisioning event published",
		"subject_id", event.SubjectID,
		"customer_id", providerCustomerID,
		"event_id", event.EventID,
	)
	return nil
}
