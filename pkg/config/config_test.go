package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, EmailDriverLog, cfg.Email.Driver)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("EMAIL_DRIVER", "SES")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_WINDOW", "bogus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, EmailDriverSES, cfg.Email.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestSchedulingLocation(t *testing.T) {
	assert.Equal(t, time.UTC, SchedulingConfig{}.Location())
	assert.Equal(t, time.UTC, SchedulingConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "UTC", SchedulingConfig{Timezone: "UTC"}.Location().String())
}
