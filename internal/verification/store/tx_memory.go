package store

import (
	"context"
	"sync"
	"time"

	dErrors "verigate/pkg/domain-errors"
)

const (
	numTxShards      = 64
	defaultTxTimeout = 5 * time.Second
)

// ShardedTx serializes in-memory write sets per subject. It gives the same
// call shape as the Postgres runner without rollback.
type ShardedTx struct {
	shards  [numTxShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

type txShardKey struct{}

// WithShardKey routes RunInTx calls for the same key to the same shard.
func WithShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txShardKey{}, key)
}

func (t *ShardedTx) selectShard(ctx context.Context) int {
	if key, ok := ctx.Value(txShardKey{}).(string); ok && key != "" {
		return int(hashString(key) % numTxShards)
	}
	return 0
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
