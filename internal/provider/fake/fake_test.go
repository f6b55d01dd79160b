package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/provider"
	"verigate/internal/provider/contract"
)

func TestFakeContract(t *testing.T) {
	s := &contract.Suite{
		Name:      "fake",
		NewClient: func(t *testing.T) provider.Client { return New() },
	}
	s.Run(t)
}

func TestFakeFailureInjection(t *testing.T) {
	p := New()
	ctx := context.Background()

	p.FailNext(provider.OpCreateCustomer, provider.NewError(provider.ErrorProviderOutage, "", "down", nil))

	first := p.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual})
	require.False(t, first.OK())
	assert.Equal(t, provider.ErrorProviderOutage, first.Err().Category)
	assert.Equal(t, provider.OpCreateCustomer, first.Err().Operation)

	second := p.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual})
	assert.True(t, second.OK(), "injected failure is consumed once")
	assert.Equal(t, 2, p.Calls(provider.OpCreateCustomer))
}

func TestFakeStatus(t *testing.T) {
	p := New(WithStatus("approved"))
	ctx := context.Background()

	ref, err := p.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual}).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "approved", ref.Status)

	p.SetCustomerStatus(ref.ID, "paused")
	snap, err := p.GetCustomer(ctx, ref.ID).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "paused", snap.Status)
}

func TestFakeRejectsDuplicatePersonEmail(t *testing.T) {
	p := New()
	ctx := context.Background()
	ref, err := p.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerBusiness}).Unwrap()
	require.NoError(t, err)

	_, err = p.CreateAssociatedPerson(ctx, ref.ID, provider.PersonPayload{Email: "a@b.test"}).Unwrap()
	require.NoError(t, err)

	dup := p.CreateAssociatedPerson(ctx, ref.ID, provider.PersonPayload{Email: "A@B.TEST"})
	require.False(t, dup.OK())
	assert.Equal(t, provider.ErrorValidation, dup.Err().Category)
	assert.Equal(t, 1, p.PersonCount(ref.ID))
}

func TestFakeConcurrentUse(t *testing.T) {
	p := New()
	ctx := context.Background()
	ref, err := p.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerBusiness}).Unwrap()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.GetCustomer(ctx, ref.ID)
			p.ListAssociatedPersons(ctx, ref.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, p.Calls(provider.OpGetCustomer))
}
