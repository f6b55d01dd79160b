package provider

import (
	"context"
	"log/slog"

	"verigate/pkg/platform/circuit"
)

// Guarded decorates a Client with a circuit breaker over transport-class
// failures (timeouts, outages, rate limits). Calls always reach the inner
// client; an open circuit only marks the provider as degraded.
type Guarded struct {
	inner   Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(inner Client, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guarded{inner: inner, breaker: breaker, logger: logger}
}

// Healthy reports whether the circuit is closed.
func (g *Guarded) Healthy() bool {
	return !g.breaker.IsOpen()
}

func (g *Guarded) CreateCustomer(ctx context.Context, payload CustomerPayload) Result[CustomerRef] {
	return observe(ctx, g, g.inner.CreateCustomer(ctx, payload))
}

func (g *Guarded) UpdateCustomer(ctx context.Context, customerID string, payload CustomerPayload) Result[CustomerRef] {
	return observe(ctx, g, g.inner.UpdateCustomer(ctx, customerID, payload))
}

func (g *Guarded) GetCustomer(ctx context.Context, customerID string) Result[CustomerSnapshot] {
	return observe(ctx, g, g.inner.GetCustomer(ctx, customerID))
}

func (g *Guarded) ListAssociatedPersons(ctx context.Context, customerID string) Result[[]PersonSnapshot] {
	return observe(ctx, g, g.inner.ListAssociatedPersons(ctx, customerID))
}

func (g *Guarded) CreateAssociatedPerson(ctx context.Context, customerID string, payload PersonPayload) Result[PersonRef] {
	return observe(ctx, g, g.inner.CreateAssociatedPerson(ctx, customerID, payload))
}

func (g *Guarded) IssueVerificationLink(ctx context.Context, customerID string) Result[LinkRef] {
	return observe(ctx, g, g.inner.IssueVerificationLink(ctx, customerID))
}

func (g *Guarded) ListWebhooks(ctx context.Context) Result[[]WebhookRef] {
	return observe(ctx, g, g.inner.ListWebhooks(ctx))
}

func observe[T any](ctx context.Context, g *Guarded, r Result[T]) Result[T] {
	if err := r.Err(); err != nil && err.Retryable {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "provider circuit opened",
				"breaker", g.breaker.Name(),
				"operation", string(err.Operation),
				"category", string(err.Category),
			)
		}
		return r
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "provider circuit closed", "breaker", g.breaker.Name())
	}
	return r
}

var _ Client = (*Guarded)(nil)
