package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "verigate/pkg/domain"
	audit "verigate/pkg/platform/audit"
	"verigate/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	subjectID := id.NewSubjectID()
	err := pub.Emit(context.Background(), audit.Event{
		SubjectID: subjectID,
		Action:    string(audit.EventSubmissionApproved),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventSubmissionApproved), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	subjectID := id.NewSubjectID()
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			SubjectID: subjectID,
			Action:    string(audit.EventPersonReconcileFail),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListBySubject(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}

func TestPublisher_BufferFull(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	var full int
	for range 5 {
		if err := pub.Emit(context.Background(), audit.Event{Action: "x"}); errors.Is(err, ErrBufferFull) {
			full++
		}
	}
	close(store.release)
	pub.Close()

	assert.Positive(t, full, "a blocked store must surface ErrBufferFull")
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	subjectID := id.NewSubjectID()
	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{SubjectID: subjectID, Action: "x"}))
	after := time.Now()

	events, err := pub.List(context.Background(), subjectID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	subjectID := id.NewSubjectID()
	custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{SubjectID: subjectID, Action: "x", Timestamp: custom}))

	events, err := pub.List(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Equal(t, custom, events[0].Timestamp)
}

func TestPublisher_CancelledContextInAsyncMode(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Emit(ctx, audit.Event{Action: "x"}), context.Canceled)
}

type blockingStore struct {
	release chan struct{}
}

func (s *blockingStore) Append(context.Context, audit.Event) error {
	<-s.release
	return nil
}

func (s *blockingStore) ListBySubject(context.Context, id.SubjectID) ([]audit.Event, error) {
	return nil, nil
}
