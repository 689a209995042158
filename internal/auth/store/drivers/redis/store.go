// Package redis stores refresh records in Redis, one hash per username.
// Records carry no Redis TTL; the service checks expiry when it reads them.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "auth:"

const (
	fieldToken     = "token_value"
	fieldIssuedAt  = "issued_at"
	fieldExpiresAt = "expires_at"
)

// Both scripts compare the stored token before writing, so the check and the
// write happen in one server-side step.
var swapScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "token_value") ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "token_value", ARGV[2], "issued_at", ARGV[3], "expires_at", ARGV[4])
return 1
`)

var deleteIfScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "token_value") ~= ARGV[1] then
  return 0
end
redis.call("DEL", KEYS[1])
return 1
`)

type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ store.CredentialStore = (*Store)(nil)

// New wraps an existing client. An empty prefix means DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Options configures Dial.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Dial connects to a single Redis server and checks it answers.
func Dial(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(client, opts.Prefix), nil
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) key(username string) string { return s.prefix + "refresh:" + username }

func (s *Store) GetRefreshRecord(ctx context.Context, username string) (domain.RefreshRecord, error) {
	vals, err := s.client.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		return domain.RefreshRecord{}, err
	}
	if len(vals) == 0 {
		return domain.RefreshRecord{}, store.ErrNotFound
	}

	issuedAt, err := parseUnix(vals[fieldIssuedAt])
	if err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("refresh record %q: %s: %w", username, fieldIssuedAt, err)
	}
	expiresAt, err := parseUnix(vals[fieldExpiresAt])
	if err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("refresh record %q: %s: %w", username, fieldExpiresAt, err)
	}

	return domain.RefreshRecord{
		Username:   username,
		TokenValue: vals[fieldToken],
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *Store) PutRefreshRecord(ctx context.Context, rec domain.RefreshRecord) error {
	return s.client.HSet(ctx, s.key(rec.Username),
		fieldToken, rec.TokenValue,
		fieldIssuedAt, rec.IssuedAt.Unix(),
		fieldExpiresAt, rec.ExpiresAt.Unix(),
	).Err()
}

func (s *Store) SwapRefreshRecord(ctx context.Context, expected string, next domain.RefreshRecord) error {
	n, err := swapScript.Run(ctx, s.client,
		[]string{s.key(next.Username)},
		expected, next.TokenValue, next.IssuedAt.Unix(), next.ExpiresAt.Unix(),
	).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func (s *Store) DeleteRefreshRecord(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.key(username)).Err()
}

func (s *Store) DeleteRefreshRecordIf(ctx context.Context, username, expected string) error {
	n, err := deleteIfScript.Run(ctx, s.client, []string{s.key(username)}, expected).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}

func parseUnix(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0).UTC(), nil
}
