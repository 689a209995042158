package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret NewCodec accepts (256 bits).
const MinSecretLength = 32

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrUnsupported = errors.New("jwtx: unsupported token")

	ErrWeakSecret = errors.New("jwtx: signing secret too short")
)

// Codec signs and verifies HS256 tokens with a single shared secret.
//
// A Codec holds no mutable state after construction and is safe for
// concurrent use.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithIssuer pins the "iss" claim. Tokens from another issuer fail with
// ErrUnsupported.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock replaces time.Now, mostly for tests around the expiry boundary.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec builds a Codec around secret. The secret is copied.
func NewCodec(secret []byte, opts ...CodecOption) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrWeakSecret, MinSecretLength, len(secret))
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}
	c.parser = jwt.NewParser(parserOpts...)

	return c, nil
}

// Issuer returns the configured "iss" value, possibly empty.
func (c *Codec) Issuer() string { return c.issuer }

// Now returns the codec's notion of the current time.
func (c *Codec) Now() time.Time { return c.now() }

// Sign serialises and signs claims. Identical claims always produce the same
// token. A failure here means the claims could not be encoded, which is a
// programming error, so Sign panics instead of returning it.
func (c *Codec) Sign(claims Claims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		panic(fmt.Sprintf("jwtx: sign claims: %v", err))
	}
	return token
}

// Verify checks the signature and expiry of raw and returns its claims.
//
// Failures are classified as ErrMalformed, ErrInvalidSig, ErrExpired or
// ErrUnsupported. On ErrExpired the signature has already been verified and
// the decoded claims are returned alongside the error.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(raw, &claims, c.keyFunc)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		if !claims.Kind.Valid() {
			return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, claims.Kind)
		}
		return claims, fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return Claims{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		// An intact header and payload means the damage is in the signature.
		if c.headerAndPayloadIntact(raw) {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	if !claims.Kind.Valid() {
		return Claims{}, fmt.Errorf("%w: unknown kind %q", ErrUnsupported, claims.Kind)
	}
	if claims.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing username", ErrMalformed)
	}

	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("alg %q not accepted", t.Method.Alg())
	}
	return c.secret, nil
}

func (c *Codec) headerAndPayloadIntact(raw string) bool {
	var claims Claims
	_, _, err := c.parser.ParseUnverified(raw, &claims)
	return err == nil
}
