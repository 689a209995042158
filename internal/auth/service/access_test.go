package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/actionprice/auth/internal/auth/service"
	"github.com/actionprice/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	token := f.access.Issue("alice")
	username, err := f.access.ValidateStrict("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestAccessTokenValidateStrict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	valid := f.access.Issue("alice")
	refresh := f.codec.Sign(jwtx.NewClaims("alice", jwtx.KindRefresh, time.Hour, f.codec.Issuer(), f.clock.Now()))
	sigStart := strings.LastIndex(valid, ".") + 1
	flipped := valid[:sigStart] + string(flip(valid[sigStart])) + valid[sigStart+1:]

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"empty header", "", service.ErrMissingOrWrongScheme},
		{"basic scheme", "Basic YWxpY2U6cHc=", service.ErrMissingOrWrongScheme},
		{"lowercase scheme", "bearer " + valid, service.ErrMissingOrWrongScheme},
		{"bearer without token", "Bearer ", service.ErrMissingOrWrongScheme},
		{"garbled token", "Bearer not-a-real-token", service.ErrMalformed},
		{"tampered signature", "Bearer " + flipped, service.ErrBadSignature},
		{"refresh token as access", "Bearer " + refresh, service.ErrUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.access.ValidateStrict(tc.header)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	token := f.access.Issue("alice")

	f.clock.Advance(jwtx.DefaultAccessTokenTTL - time.Second)
	_, err := f.access.ValidateStrict("Bearer " + token)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.access.ValidateStrict("Bearer " + token)
	require.ErrorIs(t, err, service.ErrExpired)

	kind, ok := service.KindOf(err)
	require.True(t, ok)
	require.Equal(t, service.KindExpired, kind)
	require.ErrorIs(t, err, jwtx.ErrExpired, "cause stays reachable")
}

func TestAccessTokenValidateLoose(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	token := f.access.Issue("alice")
	f.clock.Advance(24 * time.Hour)

	username, err := f.access.ValidateLoose(token)
	require.NoError(t, err, "expired tokens are tolerated")
	require.Equal(t, "alice", username)

	username, err = f.access.ValidateLoose("Bearer " + token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	for _, bad := range []string{
		"",
		"Bearer ",
		"garbage",
		token[:len(token)-2] + "xx",
		f.codec.Sign(jwtx.NewClaims("alice", jwtx.KindRefresh, time.Hour, f.codec.Issuer(), f.clock.Now())),
	} {
		_, err := f.access.ValidateLoose(bad)
		require.ErrorIs(t, err, service.ErrNoAccess, "token %q", bad)
	}
}

func flip(b byte) byte {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	return alphabet[(strings.IndexByte(alphabet, b)+1)%len(alphabet)]
}
