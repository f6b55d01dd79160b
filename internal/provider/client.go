// Package provider defines the boundary to the external identity-verification
// service. Adapters live in subpackages; the verification service depends only
// on Client and never on a package-level default.
package provider

import "context"

// Client is the set of provider operations the approval engine needs. Every
// call returns a Result; failures are values, not panics.
type Client interface {
	CreateCustomer(ctx context.Context, payload CustomerPayload) Result[CustomerRef]
	UpdateCustomer(ctx context.Context, customerID string, payload CustomerPayload) Result[CustomerRef]
	GetCustomer(ctx context.Context, customerID string) Result[CustomerSnapshot]
	ListAssociatedPersons(ctx context.Context, customerID string) Result[[]PersonSnapshot]
	CreateAssociatedPerson(ctx context.Context, customerID string, payload PersonPayload) Result[PersonRef]
	IssueVerificationLink(ctx context.Context, customerID string) Result[LinkRef]
	ListWebhooks(ctx context.Context) Result[[]WebhookRef]
}

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Client
