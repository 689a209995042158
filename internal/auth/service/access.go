package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actionprice/auth/pkg/jwtx"
)

// BearerPrefix is the only accepted Authorization scheme, case-sensitive.
const BearerPrefix = "Bearer "

// AccessTokenAuthority issues and validates short-lived access tokens. Access
// tokens are never stored.
type AccessTokenAuthority struct {
	Codec *jwtx.Codec
	TTL   time.Duration
}

func NewAccessTokenAuthority(codec *jwtx.Codec, ttl time.Duration) *AccessTokenAuthority {
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	return &AccessTokenAuthority{Codec: codec, TTL: ttl}
}

// Issue signs a fresh access token for username.
func (a *AccessTokenAuthority) Issue(username string) string {
	claims := jwtx.NewClaims(username, jwtx.KindAccess, a.TTL, a.Codec.Issuer(), a.Codec.Now())
	return a.Codec.Sign(claims)
}

// ValidateStrict checks an Authorization header value and returns the
// username of a valid, unexpired access token.
func (a *AccessTokenAuthority) ValidateStrict(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, BearerPrefix)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return "", ErrMissingOrWrongScheme
	}

	claims, err := a.Codec.Verify(raw)
	if err != nil {
		return "", classifyCodecError(err)
	}
	if claims.Kind != jwtx.KindAccess {
		return "", authError(KindUnsupported, fmt.Errorf("token kind %q", claims.Kind))
	}
	return claims.Username, nil
}

// ValidateLoose returns the username of an access token that is genuine but
// possibly expired. It is only used on the refresh path, where an expired
// access token is the normal case. The "Bearer " prefix is optional.
func (a *AccessTokenAuthority) ValidateLoose(token string) (string, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(token, BearerPrefix))
	if raw == "" {
		return "", ErrNoAccess
	}

	claims, err := a.Codec.Verify(raw)
	if err != nil && !errors.Is(err, jwtx.ErrExpired) {
		return "", authError(KindNoAccess, err)
	}
	if claims.Kind != jwtx.KindAccess {
		return "", authError(KindNoAccess, fmt.Errorf("token kind %q", claims.Kind))
	}
	return claims.Username, nil
}

func classifyCodecError(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return authError(KindExpired, err)
	case errors.Is(err, jwtx.ErrMalformed):
		return authError(KindMalformed, err)
	case errors.Is(err, jwtx.ErrInvalidSig):
		return authError(KindBadSignature, err)
	default:
		return authError(KindUnsupported, err)
	}
}
