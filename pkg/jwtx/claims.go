package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Services may override both through config.
const (
	// DefaultAccessTokenTTL is how long an access token is accepted.
	DefaultAccessTokenTTL = 60 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of a freshly issued refresh token.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind separates access tokens from refresh tokens signed with the same
// secret. A token of one kind is never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims is the signed payload shared by access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user, mirrored in "sub".
	Username string `json:"username"`

	// Kind of token, see KindAccess and KindRefresh.
	Kind Kind `json:"kind"`
}

// NewClaims builds claims for username valid from now until now+ttl.
func NewClaims(username string, kind Kind, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Kind:     kind,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. It is what
// keeps two tokens minted for the same user in the same second distinct.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// IssuedAtTime returns "iat" in UTC, or the zero time when absent.
func (c Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.UTC()
}

// ExpiresAtTime returns "exp" in UTC, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.UTC()
}
