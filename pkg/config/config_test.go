package config

import (
	"testing"
	"time"

	"trustmap/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SNAPSHOT_SOURCE", "")
	t.Setenv("ENGINE_PAGE_SIZE", "")

	cfg := Load()

	assert.Equal(t, SourceFile, cfg.Snapshot.Source)
	assert.Equal(t, "0.10", cfg.Engine.DefaultThreshold)
	assert.Equal(t, 25, cfg.Engine.PageSize)
	assert.Equal(t, time.Minute, cfg.Snapshot.RefreshInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SNAPSHOT_SOURCE", "Postgres")
	t.Setenv("ENGINE_PAGE_SIZE", "50")
	t.Setenv("SNAPSHOT_REFRESH_INTERVAL", "15s")
	t.Setenv("REDIS_URL", "redis://cache:6379")

	cfg := Load()

	assert.Equal(t, SourcePostgres, cfg.Snapshot.Source)
	assert.Equal(t, 50, cfg.Engine.PageSize)
	assert.Equal(t, 15*time.Second, cfg.Snapshot.RefreshInterval)
	assert.Equal(t, "cache:6379", cfg.Redis.URL)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ENGINE_PAGE_SIZE", "many")
	t.Setenv("SNAPSHOT_REFRESH_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 25, cfg.Engine.PageSize)
	assert.Equal(t, time.Minute, cfg.Snapshot.RefreshInterval)
}

func TestValidateCore(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: "8080"},
		Snapshot: SnapshotConfig{Source: SourcePostgres},
	}
	err := cfg.ValidateCore()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingConfiguration))
	assert.Contains(t, err.Error(), "DATABASE_URL")

	cfg.Database.URL = "postgres://localhost/ledger"
	assert.NoError(t, cfg.ValidateCore())

	cfg.Snapshot.Source = "ftp"
	assert.Error(t, cfg.ValidateCore())
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://ops.example , ,https://audit.example")

	cfg := Load()

	assert.Equal(t, []string{"https://ops.example", "https://audit.example"}, cfg.Server.CORSOrigins)
}
