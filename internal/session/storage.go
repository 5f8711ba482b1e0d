package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"tidytab/internal/errors"
	"tidytab/ports"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)

// fileRecord is the on-disk form of a session record
type fileRecord struct {
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Payload   []byte    `json:"payload"`
}

// LocalBlobStore implements ports.SessionStore on the local filesystem.
// Keys map to paths under basePath ("abc/cleaned_df" -> basePath/abc/cleaned_df.json).
// Writers are serialized within the process, so it must not be shared between processes.
// Versions come from a VersionClock and keep growing across deletes and restarts.
type LocalBlobStore struct {
	basePath string
	mu       sync.Mutex
	now      func() time.Time
	clock    *VersionClock
}

// NewLocalBlobStore creates a new local blob store
func NewLocalBlobStore(basePath string) (*LocalBlobStore, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	lbs := &LocalBlobStore{
		basePath: basePath,
		now:      time.Now,
	}
	lbs.clock = NewVersionClock(func() time.Time { return lbs.now() })
	return lbs, nil
}

// Get reads a record; found is false when nothing is stored under key
func (lbs *LocalBlobStore) Get(ctx context.Context, key string) (*ports.SessionRecord, bool, error) {
	lbs.mu.Lock()
	defer lbs.mu.Unlock()
	return lbs.read(key)
}

// Put writes unconditionally
func (lbs *LocalBlobStore) Put(ctx context.Context, key string, payload []byte) (int64, error) {
	lbs.mu.Lock()
	defer lbs.mu.Unlock()

	current, _, err := lbs.read(key)
	if err != nil {
		return 0, err
	}
	var floor int64
	if current != nil {
		floor = current.Version
	}
	version := lbs.clock.Next(floor)
	return version, lbs.write(key, payload, version)
}

// CompareAndSwap writes only if the stored version equals expectedVersion
func (lbs *LocalBlobStore) CompareAndSwap(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	lbs.mu.Lock()
	defer lbs.mu.Unlock()

	current, found, err := lbs.read(key)
	if err != nil {
		return 0, err
	}
	if !found || current.Version != expectedVersion {
		return 0, errors.VersionConflict(key)
	}
	version := lbs.clock.Next(expectedVersion)
	return version, lbs.write(key, payload, version)
}

// Delete removes a record. Deleting a missing key is not an error.
func (lbs *LocalBlobStore) Delete(ctx context.Context, key string) error {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return err
	}

	lbs.mu.Lock()
	defer lbs.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// Prune removes records whose files were last written before now-olderThan
func (lbs *LocalBlobStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := lbs.now().Add(-olderThan)

	lbs.mu.Lock()
	defer lbs.mu.Unlock()

	removed := 0
	err := filepath.Walk(lbs.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove expired file %s: %w", path, err)
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (lbs *LocalBlobStore) read(key string) (*ports.SessionRecord, bool, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("corrupt session file %s: %w", filePath, err)
	}
	return &ports.SessionRecord{
		Key:       key,
		Payload:   rec.Payload,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
	}, true, nil
}

// write replaces the file through a rename so readers never see a partial record
func (lbs *LocalBlobStore) write(key string, payload []byte, version int64) error {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.Marshal(fileRecord{Version: version, UpdatedAt: lbs.now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	return nil
}

// keyToPath converts a slash-separated key to a filesystem path
func (lbs *LocalBlobStore) keyToPath(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", errors.InvalidInput(fmt.Sprintf("invalid session key %q", key))
	}
	return filepath.Join(lbs.basePath, filepath.FromSlash(key)+".json"), nil
}
