package provider

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy
type ErrorCategory string

const (
	// ErrorTimeout indicates the provider took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the provider returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorProviderOutage indicates the provider is unavailable
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorContractMismatch indicates the provider API version changed
	ErrorContractMismatch ErrorCategory = "contract_mismatch"

	// ErrorNotFound indicates the requested record doesn't exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorValidation indicates the provider rejected the payload
	ErrorValidation ErrorCategory = "validation"

	// ErrorInternal indicates an unexpected internal error
	ErrorInternal ErrorCategory = "internal"
)

// Operation names a ProviderClient call, used in errors and metrics.
type Operation string

const (
	OpCreateCustomer         Operation = "create_customer"
	OpUpdateCustomer         Operation = "update_customer"
	OpGetCustomer            Operation = "get_customer"
	OpListAssociatedPersons  Operation = "list_associated_persons"
	OpCreateAssociatedPerson Operation = "create_associated_person"
	OpIssueVerificationLink  Operation = "issue_verification_link"
	OpListWebhooks           Operation = "list_webhooks"
)

// Error wraps provider failures with normalized categorization
type Error struct {
	Category   ErrorCategory
	Operation  Operation
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.Operation, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.Operation, e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a new normalized provider error
func NewError(category ErrorCategory, op Operation, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorProviderOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:   category,
		Operation:  op,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// WithStatus records the HTTP status the error was derived from.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
