package session

import (
	"context"
	"log"

	"tidytab/internal/errors"
	"tidytab/ports"
)

// LimitedStore wraps a store and rejects payloads above maxSize bytes
type LimitedStore struct {
	ports.SessionStore
	maxSize int64
}

// NewLimitedStore caps every write to next at maxSize bytes
func NewLimitedStore(next ports.SessionStore, maxSize int64) *LimitedStore {
	if maxSize <= 0 {
		maxSize = 16 * 1024 * 1024 // 16MB default
	}
	return &LimitedStore{SessionStore: next, maxSize: maxSize}
}

// MaxSize returns the payload cap in bytes
func (s *LimitedStore) MaxSize() int64 {
	return s.maxSize
}

func (s *LimitedStore) Put(ctx context.Context, key string, payload []byte) (int64, error) {
	if err := s.check(key, payload); err != nil {
		return 0, err
	}
	return s.SessionStore.Put(ctx, key, payload)
}

func (s *LimitedStore) CompareAndSwap(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	if err := s.check(key, payload); err != nil {
		return 0, err
	}
	return s.SessionStore.CompareAndSwap(ctx, key, payload, expectedVersion)
}

func (s *LimitedStore) check(key string, payload []byte) error {
	size := int64(len(payload))
	if size > s.maxSize {
		log.Printf("[LimitedStore] Rejected %d byte payload for %s (limit %d)", size, key, s.maxSize)
		return errors.PayloadTooLarge("session payload", size, s.maxSize)
	}
	return nil
}
