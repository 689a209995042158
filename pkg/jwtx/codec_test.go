package jwtx_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/actionprice/auth/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func newCodec(t *testing.T, clock *fixedClock) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(testSecret, jwtx.WithIssuer("actionprice-auth"), jwtx.WithClock(clock.Now))
	require.NoError(t, err)
	return c
}

func requireSameClaims(t *testing.T, want, got jwtx.Claims) {
	t.Helper()
	require.Equal(t, want.Username, got.Username)
	require.Equal(t, want.Kind, got.Kind)
	require.Equal(t, want.Subject, got.Subject)
	require.Equal(t, want.Issuer, got.Issuer)
	require.Equal(t, want.ID, got.ID)
	require.True(t, want.IssuedAtTime().Equal(got.IssuedAtTime()))
	require.True(t, want.ExpiresAtTime().Equal(got.ExpiresAtTime()))
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewCodec([]byte("too-short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, &fixedClock{t: now})

	cases := []struct {
		name     string
		username string
		kind     jwtx.Kind
		ttl      time.Duration
	}{
		{"access", "alice", jwtx.KindAccess, jwtx.DefaultAccessTokenTTL},
		{"refresh", "bob", jwtx.KindRefresh, jwtx.DefaultRefreshTokenTTL},
		{"short lived", "carol_01", jwtx.KindAccess, time.Second},
		{"unicode username", "사용자", jwtx.KindAccess, time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := jwtx.NewClaims(tc.username, tc.kind, tc.ttl, codec.Issuer(), now)

			got, err := codec.Verify(codec.Sign(claims))
			require.NoError(t, err)
			requireSameClaims(t, claims, got)
		})
	}
}

func TestCodecSignIsDeterministic(t *testing.T) {
	now := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, &fixedClock{t: now})

	claims := jwtx.NewClaims("alice", jwtx.KindAccess, time.Hour, codec.Issuer(), now)
	require.Equal(t, codec.Sign(claims), codec.Sign(claims))
}

func TestCodecExpiryBoundary(t *testing.T) {
	issued := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	clock := &fixedClock{t: issued}
	codec := newCodec(t, clock)

	claims := jwtx.NewClaims("alice", jwtx.KindAccess, time.Hour, codec.Issuer(), issued)
	token := codec.Sign(claims)

	t.Run("one second before expiry is accepted", func(t *testing.T) {
		clock.t = claims.ExpiresAtTime().Add(-time.Second)
		_, err := codec.Verify(token)
		require.NoError(t, err)
	})

	t.Run("expiry instant is rejected", func(t *testing.T) {
		clock.t = claims.ExpiresAtTime()
		got, err := codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.Equal(t, "alice", got.Username, "expired claims are still returned")
	})

	t.Run("after expiry is rejected", func(t *testing.T) {
		clock.t = claims.ExpiresAtTime().Add(time.Minute)
		_, err := codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestCodecDetectsSignatureTampering(t *testing.T) {
	now := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, &fixedClock{t: now})

	token := codec.Sign(jwtx.NewClaims("alice", jwtx.KindAccess, time.Hour, codec.Issuer(), now))
	sigStart := strings.LastIndex(token, ".") + 1

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := sigStart; i < len(token); i++ {
		replacement := alphabet[(strings.IndexByte(alphabet, token[i])+1)%len(alphabet)]
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := codec.Verify(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig, "position %d", i)
	}

	t.Run("non base64 byte in signature", func(t *testing.T) {
		_, err := codec.Verify(token[:sigStart] + "*" + token[sigStart+1:])
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := jwtx.NewCodec([]byte("ffffffffffffffffffffffffffffffff"), jwtx.WithIssuer("actionprice-auth"))
		require.NoError(t, err)
		_, err = other.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestCodecMalformed(t *testing.T) {
	codec := newCodec(t, &fixedClock{t: time.Now()})

	for _, raw := range []string{
		"",
		"not-a-real-token",
		"a.b",
		"a.b.c.d",
		"!!!.@@@.###",
	} {
		_, err := codec.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "token %q", raw)
	}
}

func TestCodecUnsupported(t *testing.T) {
	now := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	codec := newCodec(t, &fixedClock{t: now})
	claims := jwtx.NewClaims("alice", jwtx.KindAccess, time.Hour, codec.Issuer(), now)

	t.Run("alg none", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})

	t.Run("other hmac alg", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})

	t.Run("unknown alg header", func(t *testing.T) {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"XX999","typ":"JWT"}`))
		payload, err := json.Marshal(claims)
		require.NoError(t, err)
		raw := header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2ln"
		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := claims
		foreign.Issuer = "someone-else"
		_, err := codec.Verify(codec.Sign(foreign))
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})

	t.Run("unknown kind", func(t *testing.T) {
		odd := claims
		odd.Kind = "session"
		_, err := codec.Verify(codec.Sign(odd))
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})

	t.Run("missing expiry", func(t *testing.T) {
		forever := claims
		forever.ExpiresAt = nil
		_, err := codec.Verify(codec.Sign(forever))
		require.ErrorIs(t, err, jwtx.ErrUnsupported)
	})
}

func TestNewClaimsUniqueIDs(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for range 100 {
		c := jwtx.NewClaims("alice", jwtx.KindRefresh, time.Hour, "", now)
		_, dup := seen[c.ID]
		require.False(t, dup)
		seen[c.ID] = struct{}{}
	}
}
