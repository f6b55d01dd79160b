package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "verigate/pkg/domain-errors"
)

// Typed identifiers keep submission, subject and person ids from being mixed up
// at compile time. All are UUIDs on the wire.
type (
	SubmissionID  uuid.UUID
	SubjectID     uuid.UUID
	DocumentID    uuid.UUID
	PersonID      uuid.UUID
	IntegrationID uuid.UUID
	ActorID       uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return parsed, nil
}

func ParseSubmissionID(s string) (SubmissionID, error) {
	u, err := parseUUID("submission id", s)
	return SubmissionID(u), err
}

func ParseSubjectID(s string) (SubjectID, error) {
	u, err := parseUUID("subject id", s)
	return SubjectID(u), err
}

func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID("person id", s)
	return PersonID(u), err
}

func ParseActorID(s string) (ActorID, error) {
	u, err := parseUUID("actor id", s)
	return ActorID(u), err
}

func NewSubmissionID() SubmissionID   { return SubmissionID(uuid.New()) }
func NewSubjectID() SubjectID         { return SubjectID(uuid.New()) }
func NewDocumentID() DocumentID       { return DocumentID(uuid.New()) }
func NewPersonID() PersonID           { return PersonID(uuid.New()) }
func NewIntegrationID() IntegrationID { return IntegrationID(uuid.New()) }

func (id SubmissionID) String() string  { return uuid.UUID(id).String() }
func (id SubjectID) String() string     { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id PersonID) String() string      { return uuid.UUID(id).String() }
func (id IntegrationID) String() string { return uuid.UUID(id).String() }
func (id ActorID) String() string       { return uuid.UUID(id).String() }

func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SubjectID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PersonID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ActorID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func (id SubmissionID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id SubjectID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PersonID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id IntegrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ActorID) MarshalText() ([]byte, error)       { return uuid.UUID(id).MarshalText() }
