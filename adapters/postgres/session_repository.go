package postgres

import (
	"context"
	"database/sql"
	"time"

	"tidytab/internal/errors"
	"tidytab/internal/session"
	"tidytab/ports"

	"github.com/jmoiron/sqlx"
)

// SessionRepositoryImpl implements ports.SessionStore on the session_blobs table.
// The SQL is portable between PostgreSQL and SQLite; placeholders are rebound
// for the connected driver.
type SessionRepositoryImpl struct {
	db    *sqlx.DB
	now   func() time.Time
	clock *session.VersionClock
}

type sessionBlobRow struct {
	Key       string `db:"session_key"`
	Payload   []byte `db:"payload"`
	Version   int64  `db:"version"`
	UpdatedAt int64  `db:"updated_at"`
}

// NewSessionRepository creates a new SQL-backed session store
func NewSessionRepository(db *sqlx.DB) *SessionRepositoryImpl {
	r := &SessionRepositoryImpl{db: db, now: time.Now}
	r.clock = session.NewVersionClock(func() time.Time { return r.now() })
	return r
}

// Get retrieves a record by key
func (r *SessionRepositoryImpl) Get(ctx context.Context, key string) (*ports.SessionRecord, bool, error) {
	var row sessionBlobRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT session_key, payload, version, updated_at
		FROM session_blobs
		WHERE session_key = ?
	`), key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.DatabaseError("failed to load session", err)
	}

	return &ports.SessionRecord{
		Key:       row.Key,
		Payload:   row.Payload,
		Version:   row.Version,
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
	}, true, nil
}

// Put inserts or overwrites a record, bumping its version
func (r *SessionRepositoryImpl) Put(ctx context.Context, key string, payload []byte) (int64, error) {
	var version int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO session_blobs (session_key, payload, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_key) DO UPDATE SET
			payload = excluded.payload,
			version = CASE
				WHEN session_blobs.version >= excluded.version THEN session_blobs.version + 1
				ELSE excluded.version
			END,
			updated_at = excluded.updated_at
		RETURNING version
	`), key, string(payload), r.clock.Next(0), r.now().UnixMilli()).Scan(&version)
	if err != nil {
		return 0, errors.DatabaseError("failed to store session", err)
	}
	r.clock.Observe(version)
	return version, nil
}

// CompareAndSwap updates the record only while it is still at expectedVersion
func (r *SessionRepositoryImpl) CompareAndSwap(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	next := r.clock.Next(expectedVersion)
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE session_blobs
		SET payload = ?, version = ?, updated_at = ?
		WHERE session_key = ? AND version = ?
	`), string(payload), next, r.now().UnixMilli(), key, expectedVersion)
	if err != nil {
		return 0, errors.DatabaseError("failed to update session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("failed to update session", err)
	}
	if affected == 0 {
		return 0, errors.VersionConflict(key)
	}
	return next, nil
}

// Delete removes a record
func (r *SessionRepositoryImpl) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM session_blobs WHERE session_key = ?`), key)
	if err != nil {
		return errors.DatabaseError("failed to delete session", err)
	}
	return nil
}

// Prune removes records not written within olderThan
func (r *SessionRepositoryImpl) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := r.now().Add(-olderThan).UnixMilli()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM session_blobs WHERE updated_at < ?`), cutoff)
	if err != nil {
		return 0, errors.DatabaseError("failed to prune sessions", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("failed to prune sessions", err)
	}
	return int(affected), nil
}
