package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultWorkers, cfg.Pool.Workers)
	assert.Equal(t, DefaultQueueSize, cfg.Pool.QueueSize)
	assert.Equal(t, 60*time.Second, cfg.Pool.DrainTimeout)
	assert.Equal(t, 10*time.Second, cfg.Pool.StoreTimeout)
	assert.False(t, cfg.Mirror.Enabled)
	assert.Equal(t, DefaultMirrorTable, cfg.Mirror.Table)
	assert.Equal(t, DefaultUsersTable, cfg.Mirror.UsersTable)
	assert.False(t, cfg.Reconcile.Enabled)
	assert.Equal(t, "0 3 * * *", cfg.Reconcile.Schedule)
	assert.Equal(t, 30, cfg.Recommend.Candidates)
	assert.Equal(t, 10, cfg.Recommend.Limit)
	assert.Empty(t, cfg.GoogleBooks.BaseURL)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKERS", "16")
	t.Setenv("DRAIN_TIMEOUT", "5s")
	t.Setenv("MIRROR_ENABLED", "true")
	t.Setenv("DYNAMODB_ENDPOINT", "http://localhost:8000")
	t.Setenv("GOOGLE_BOOKS_RPS", "2.5")
	t.Setenv("RECONCILE_ENABLED", "true")
	t.Setenv("RECONCILE_SCHEDULE", "*/15 * * * *")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.Equal(t, 16, cfg.Pool.Workers)
	assert.Equal(t, 5*time.Second, cfg.Pool.DrainTimeout)
	assert.True(t, cfg.Mirror.Enabled)
	assert.Equal(t, "http://localhost:8000", cfg.Mirror.Endpoint)
	assert.InDelta(t, 2.5, cfg.GoogleBooks.RPS, 0.001)
	assert.True(t, cfg.Reconcile.Enabled)
	assert.Equal(t, "*/15 * * * *", cfg.Reconcile.Schedule)
}
