package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, lockers and adapters return
// these (optionally wrapped) and the verification service translates them into
// coded domain errors:
//   - ErrNotFound: row or file does not exist
//   - ErrConflict: unique constraint or concurrent writer won
//   - ErrLocked: another caller holds the subject lock
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrLocked       = errors.New("locked")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
