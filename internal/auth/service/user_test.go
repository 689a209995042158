package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, []string{domain.RoleUser}, u.Roles)
	require.NotEqual(t, testPassword, u.PasswordHash)

	stored, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, stored.ID)
	require.Equal(t, u.PasswordHash, stored.PasswordHash)

	_, err = f.users.Register(ctx, "alice", testPassword)
	require.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), "a!", "short")
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "username")
	require.Contains(t, verr.Fields, "password")
}

func TestUsernameAvailable(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")

	ok, err := f.users.UsernameAvailable(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.users.UsernameAvailable(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.users.UsernameAvailable(ctx, "")
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestFindByUsernameUnknown(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.users.FindByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = f.users.UpgradePasswordHash(context.Background(), "ghost", testPassword)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("generates a password on an empty directory", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		created, generated, err := f.users.EnsureAdmin(ctx, "admin", "")
		require.NoError(t, err)
		require.True(t, created)
		require.Len(t, generated, 16)

		_, authCtx, err := f.sessions.Login(ctx, "admin", generated)
		require.NoError(t, err)
		require.True(t, authCtx.HasRole(domain.RoleAdmin))
		require.True(t, authCtx.HasRole(domain.RoleUser))

		created, generated, err = f.users.EnsureAdmin(ctx, "admin", "")
		require.NoError(t, err)
		require.False(t, created)
		require.Empty(t, generated)
	})

	t.Run("uses the configured password", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		created, generated, err := f.users.EnsureAdmin(ctx, "root", testPassword)
		require.NoError(t, err)
		require.True(t, created)
		require.Empty(t, generated)

		_, _, err = f.sessions.Login(ctx, "root", testPassword)
		require.NoError(t, err)
	})

	t.Run("skipped when users exist", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.register(t, "alice")

		created, _, err := f.users.EnsureAdmin(ctx, "admin", "")
		require.NoError(t, err)
		require.False(t, created)

		_, err = f.users.FindByUsername(ctx, "admin")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("rejects a bad username", func(t *testing.T) {
		f := newFixture(t)
		_, _, err := f.users.EnsureAdmin(context.Background(), "a", "")
		require.Error(t, err)
	})
}
