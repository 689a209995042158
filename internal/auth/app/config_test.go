package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_ISSUER", "AUTH_ACCESS_TTL", "AUTH_REFRESH_TTL", "AUTH_REFRESH_ROTATE_BELOW",
		"AUTH_CREDENTIAL_STORE", "AUTH_ADMIN_USERNAME", "PORT", "SHUTDOWN_GRACE_PERIOD",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "actionprice-auth", cfg.Issuer)
	require.Equal(t, 60*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 48*time.Hour, cfg.RefreshRotateBelow)
	require.Equal(t, CredentialStoreSQLite, cfg.CredentialStore)
	require.Equal(t, "admin", cfg.AdminUsername)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TTL", "15m")
	t.Setenv("AUTH_REFRESH_TTL", "1440") // minutes
	t.Setenv("AUTH_REFRESH_ROTATE_BELOW", "not-a-duration")
	t.Setenv("AUTH_CREDENTIAL_STORE", "redis")
	t.Setenv("AUTH_REDIS_DB", "3")
	t.Setenv("PORT", "x")

	cfg := LoadConfig()
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 48*time.Hour, cfg.RefreshRotateBelow, "unparseable values fall back")
	require.Equal(t, CredentialStoreRedis, cfg.CredentialStore)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, 8080, cfg.Port)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		AccessTTL:          time.Hour,
		RefreshTTL:         7 * 24 * time.Hour,
		RefreshRotateBelow: 48 * time.Hour,
		CredentialStore:    CredentialStoreSQLite,
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"zero access ttl":          func(c *Config) { c.AccessTTL = 0 },
		"refresh shorter":          func(c *Config) { c.RefreshTTL = 30 * time.Minute },
		"rotate beyond lifetime":   func(c *Config) { c.RefreshRotateBelow = 8 * 24 * time.Hour },
		"unknown store":            func(c *Config) { c.CredentialStore = "memcached" },
		"redis without an address": func(c *Config) { c.CredentialStore = CredentialStoreRedis },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
