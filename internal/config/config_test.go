package config

import (
	"testing"
	"time"

	"tidytab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, int64(50<<20), cfg.Limits.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Limits.PreviewRows)
	assert.Equal(t, "tidytab_session", cfg.Session.CookieName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("MAX_SESSION_BYTES", "1024")
	t.Setenv("SESSION_MAX_AGE", "2h")
	t.Setenv("SITE_BASE_URL", "https://example.org/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Session.SQLitePath)
	assert.Equal(t, int64(1024), cfg.Limits.MaxSessionBytes)
	assert.Equal(t, 2*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "https://example.org", cfg.Site.BaseURL)
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "redis")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
