package service

import (
	"errors"
	"strings"

	"verigate/internal/provider"
	"verigate/internal/verification/models"
	dErrors "verigate/pkg/domain-errors"
)

// ValidationError is returned by Approve when the gate fails. No provider call
// has been made and nothing was written.
type ValidationError struct {
	MissingDocuments []models.DocumentType
	MissingFields    []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingDocuments) > 0 {
		names := make([]string, len(e.MissingDocuments))
		for i, d := range e.MissingDocuments {
			names[i] = string(d)
		}
		parts = append(parts, "missing approved documents: "+strings.Join(names, ", "))
	}
	if len(e.MissingFields) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.MissingFields, ", "))
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the coded form so transports map it to a validation status.
func (e *ValidationError) Unwrap() error {
	return dErrors.New(dErrors.CodeValidation, e.Error())
}

func (e *ValidationError) empty() bool {
	return len(e.MissingDocuments) == 0 && len(e.MissingFields) == 0
}

// AsValidationError extracts a gate failure from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// providerFailure codes a provider error as bad_gateway while keeping the
// *provider.Error reachable through errors.As.
func providerFailure(pe *provider.Error) error {
	msg := "provider request failed"
	if pe.Message != "" {
		msg = "provider request failed: " + pe.Message
	}
	return dErrors.Wrap(pe, dErrors.CodeBadGateway, msg)
}
