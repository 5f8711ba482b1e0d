package ports

import (
	"context"
	"time"
)

// SessionRecord is one versioned blob held for a caller
type SessionRecord struct {
	Key       string
	Payload   []byte
	Version   int64
	UpdatedAt time.Time
}

// SessionStore is a per-caller key-value blob store. Every write gives the
// record a higher version, and a version is never handed out twice for a key,
// not even after Delete. CompareAndSwap only writes when the stored version
// still matches, and reports a VERSION_CONFLICT error otherwise.
type SessionStore interface {
	Get(ctx context.Context, key string) (*SessionRecord, bool, error)
	Put(ctx context.Context, key string, payload []byte) (int64, error)
	CompareAndSwap(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, key string) error
	// Prune removes records not written since olderThan ago and returns how many went.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}
