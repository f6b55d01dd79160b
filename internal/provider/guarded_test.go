package provider_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/provider"
	"verigate/internal/provider/fake"
	"verigate/pkg/platform/circuit"
)

func TestGuarded(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("outages open the circuit without blocking calls", func(t *testing.T) {
		inner := fake.New()
		g := provider.NewGuarded(inner, circuit.New("provider", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1)), logger)

		for range 2 {
			inner.FailNext(provider.OpListWebhooks, provider.NewError(provider.ErrorProviderOutage, provider.OpListWebhooks, "down", nil))
			assert.False(t, g.ListWebhooks(ctx).OK())
		}
		assert.False(t, g.Healthy())

		require.True(t, g.ListWebhooks(ctx).OK())
		assert.True(t, g.Healthy())
	})

	t.Run("validation failures do not count", func(t *testing.T) {
		inner := fake.New()
		g := provider.NewGuarded(inner, circuit.New("provider", circuit.WithFailureThreshold(1)), logger)

		inner.FailNext(provider.OpCreateCustomer, provider.NewError(provider.ErrorValidation, provider.OpCreateCustomer, "bad email", nil))
		assert.False(t, g.CreateCustomer(ctx, provider.CustomerPayload{}).OK())
		assert.True(t, g.Healthy())
	})
}
