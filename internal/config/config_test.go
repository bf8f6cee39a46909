package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"MODE", "SEED_SCALE", "SEED_SIZE", "SYNC_INTERVAL", "CACHE_DRIVER", "DB_DRIVER", "STRICT_BOOT"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	assert.Equal(t, ModeOffline, c.Mode)
	assert.Equal(t, 100, c.SeedScale)
	assert.Equal(t, 30, c.SeedSize)
	assert.Equal(t, 10*time.Minute, c.SyncInterval)
	assert.Equal(t, "memory", c.CacheDriver)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.False(t, c.SecureCookies)
	assert.True(t, c.StrictBoot)
	assert.Equal(t, c.CORSOriginsOffline, c.CORSOrigins())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MODE", "online")
	t.Setenv("SEED_SCALE", "12")
	t.Setenv("SYNC_INTERVAL", "90s")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ORIGINS_ONLINE", " https://a.example , ,https://b.example")
	t.Setenv("STRICT_BOOT", "false")

	c := FromEnv()
	assert.Equal(t, ModeOnline, c.Mode)
	assert.Equal(t, 12, c.SeedScale)
	assert.Equal(t, 90*time.Second, c.SyncInterval)
	assert.Equal(t, 5*time.Second, c.StoreTimeout)
	assert.True(t, c.SecureCookies)
	assert.False(t, c.StrictBoot)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins())
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SEED_SIZE=7\nREDIS_DB=3\n"), 0o600))
	t.Setenv("REDIS_DB", "5")
	t.Setenv("SEED_SIZE", "")
	os.Unsetenv("SEED_SIZE")

	c := Load(path)
	assert.Equal(t, 7, c.SeedSize)
	assert.Equal(t, 5, c.RedisDB)
}
