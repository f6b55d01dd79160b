// Package contract holds a reusable suite asserting that a provider.Client
// honours the Result contract.
package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verigate/internal/provider"
	"verigate/pkg/email"
)

// Suite runs the contract tests against the client returned by NewClient.
// NewClient is called once per test so implementations start clean.
type Suite struct {
	Name      string
	NewClient func(t *testing.T) provider.Client
}

// Run executes every contract test as a subtest.
func (s *Suite) Run(t *testing.T) {
	t.Run(s.Name+"/customer create then get", func(t *testing.T) {
		c := s.NewClient(t)
		ctx := context.Background()

		created := c.CreateCustomer(ctx, provider.CustomerPayload{
			Type:      provider.CustomerIndividual,
			Email:     "ada@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})
		ref, err := created.Unwrap()
		require.NoError(t, err)
		require.NotEmpty(t, ref.ID)

		got := c.GetCustomer(ctx, ref.ID)
		snap, err := got.Unwrap()
		require.NoError(t, err)
		assert.Equal(t, ref.ID, snap.ID)
		assert.NotEmpty(t, snap.Status)
		assert.NotEmpty(t, snap.Raw, "snapshot keeps the raw provider body")
	})

	t.Run(s.Name+"/update keeps customer id", func(t *testing.T) {
		c := s.NewClient(t)
		ctx := context.Background()

		ref, err := c.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerBusiness, Email: "ops@acme.test"}).Unwrap()
		require.NoError(t, err)

		updated, err := c.UpdateCustomer(ctx, ref.ID, provider.CustomerPayload{Type: provider.CustomerBusiness, Email: "ops@acme.test", BusinessLegalName: "Acme"}).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, ref.ID, updated.ID)
	})

	t.Run(s.Name+"/created person is listed", func(t *testing.T) {
		c := s.NewClient(t)
		ctx := context.Background()

		ref, err := c.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerBusiness, Email: "ops@acme.test"}).Unwrap()
		require.NoError(t, err)

		person, err := c.CreateAssociatedPerson(ctx, ref.ID, provider.PersonPayload{
			FirstName: "Grace", LastName: "Hopper", Email: "Grace@Acme.test", HasControl: true,
		}).Unwrap()
		require.NoError(t, err)
		require.NotEmpty(t, person.ID)

		persons, err := c.ListAssociatedPersons(ctx, ref.ID).Unwrap()
		require.NoError(t, err)
		var found bool
		for _, p := range persons {
			if p.ID == person.ID {
				found = true
				assert.True(t, email.Equal("grace@acme.test", p.Email))
			}
		}
		assert.True(t, found, "created person must appear in list")
	})

	t.Run(s.Name+"/verification link issued", func(t *testing.T) {
		c := s.NewClient(t)
		ctx := context.Background()

		ref, err := c.CreateCustomer(ctx, provider.CustomerPayload{Type: provider.CustomerIndividual, Email: "ada@example.com"}).Unwrap()
		require.NoError(t, err)

		link, err := c.IssueVerificationLink(ctx, ref.ID).Unwrap()
		require.NoError(t, err)
		assert.NotEmpty(t, link.URL)
	})

	t.Run(s.Name+"/unknown customer maps to not_found", func(t *testing.T) {
		c := s.NewClient(t)
		res := c.GetCustomer(context.Background(), "cus_does_not_exist")
		require.False(t, res.OK())
		assert.Equal(t, provider.ErrorNotFound, res.Err().Category)
		assert.Equal(t, provider.OpGetCustomer, res.Err().Operation)
	})

	t.Run(s.Name+"/webhooks list is never nil", func(t *testing.T) {
		c := s.NewClient(t)
		hooks, err := c.ListWebhooks(context.Background()).Unwrap()
		require.NoError(t, err)
		assert.NotNil(t, hooks)
	})
}
