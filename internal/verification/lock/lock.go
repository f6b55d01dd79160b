// Package lock serializes admin transitions on one subject. Approve performs
// several provider calls outside any database transaction, so two admins
// approving the same subject would otherwise race on remote state.
package lock

import (
	"context"

	id "verigate/pkg/domain"
)

const keyPrefix = "verigate:lock:subject:"

// Release gives the lock back. It is safe to call after the lock expired.
type Release func(ctx context.Context) error

// Locker acquires a named lock without waiting. A held lock yields an error
// wrapping sentinel.ErrLocked.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// SubjectKey names the lock guarding one subject.
func SubjectKey(subjectID id.SubjectID) string {
	return keyPrefix + subjectID.String()
}
