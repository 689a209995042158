package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/actionprice/auth/pkg/authsdk"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	return Config{
		Issuer:              "test",
		AccessTTL:           time.Hour,
		RefreshTTL:          7 * 24 * time.Hour,
		RefreshRotateBelow:  48 * time.Hour,
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		SigningSecretFile:   filepath.Join(dir, "signing_secret"),
		CredentialStore:     CredentialStoreSQLite,
		AdminUsername:       "root",
		AdminPassword:       "correct-horse-battery",
		Env:                 "test",
		LogLevel:            "error",
		LogFormat:           "text",
		ShutdownGracePeriod: time.Second,
	}
}

func TestNew(t *testing.T) {
	for name, configure := range map[string]func(t *testing.T, cfg *Config){
		"sqlite": func(*testing.T, *Config) {},
		"redis": func(t *testing.T, cfg *Config) {
			mr := miniredis.RunT(t)
			cfg.CredentialStore = CredentialStoreRedis
			cfg.RedisAddr = mr.Addr()
			cfg.RedisPrefix = "test:"
		},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t)
			configure(t, &cfg)

			application, err := New(cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.Shutdown() })

			srv := httptest.NewServer(application.Handler())
			t.Cleanup(srv.Close)
			client := authsdk.NewClient(srv.URL)
			ctx := context.Background()

			tokens, err := client.Login(ctx, "root", "correct-horse-battery")
			require.NoError(t, err)

			me, err := client.Me(ctx, tokens.AccessToken)
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"ADMIN", "USER"}, me.Roles)

			ready, err := client.GetReadiness(ctx)
			require.NoError(t, err)
			require.Equal(t, "ok", ready.Status)
			if cfg.CredentialStore == CredentialStoreRedis {
				require.Equal(t, "ok", ready.Checks.CredentialStore)
			}
		})
	}
}

func TestNewKeepsSessionsAcrossRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := New(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(first.Handler())
	tokens, err := authsdk.NewClient(srv.URL).Login(ctx, "root", "correct-horse-battery")
	require.NoError(t, err)
	srv.Close()
	require.NoError(t, first.Shutdown())

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Shutdown() })
	srv = httptest.NewServer(second.Handler())
	t.Cleanup(srv.Close)

	refreshed, err := authsdk.NewClient(srv.URL).Refresh(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.CredentialStore = "memcached"
	_, err := New(cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.CredentialStore = CredentialStoreRedis
	cfg.RedisAddr = "127.0.0.1:1"
	_, err = New(cfg)
	require.Error(t, err)
}
