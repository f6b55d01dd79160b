package lock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verigate/pkg/domain"
	"verigate/pkg/platform/sentinel"
)

func TestSubjectKey(t *testing.T) {
	subject := id.SubjectID(uuid.MustParse("3f2a6a7e-6a53-4d2c-9a7f-1f2b3c4d5e6f"))
	assert.Equal(t, "verigate:lock:subject:3f2a6a7e-6a53-4d2c-9a7f-1f2b3c4d5e6f", SubjectKey(subject))
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire is rejected until release", func(t *testing.T) {
		l := NewMemoryLocker(time.Minute)
		release, err := l.Acquire(ctx, "k")
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "k")
		assert.ErrorIs(t, err, sentinel.ErrLocked)

		require.NoError(t, release(ctx))
		release2, err := l.Acquire(ctx, "k")
		require.NoError(t, err)
		require.NoError(t, release2(ctx))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewMemoryLocker(time.Minute)
		_, err := l.Acquire(ctx, "a")
		require.NoError(t, err)
		_, err = l.Acquire(ctx, "b")
		assert.NoError(t, err)
	})

	t.Run("expired lock can be taken and stale release is ignored", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		l := NewMemoryLocker(time.Second)
		l.now = func() time.Time { return now }

		staleRelease, err := l.Acquire(ctx, "k")
		require.NoError(t, err)

		now = now.Add(2 * time.Second)
		_, err = l.Acquire(ctx, "k")
		require.NoError(t, err)

		require.NoError(t, staleRelease(ctx))
		_, err = l.Acquire(ctx, "k")
		assert.ErrorIs(t, err, sentinel.ErrLocked, "stale holder must not free the new lock")
	})
}
