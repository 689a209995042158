package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/metrics"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/actionprice/auth/pkg/cryptox"
	"github.com/actionprice/auth/pkg/jwtx"
	"github.com/actionprice/auth/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// DefaultRotateBelow is the remaining lifetime under which a refresh record
// is replaced on use.
const DefaultRotateBelow = 2 * 24 * time.Hour

// RefreshTokenAuthority owns the single active refresh record per user.
// Expired records are removed when they are next read; nothing sweeps them.
type RefreshTokenAuthority struct {
	Codec       *jwtx.Codec
	Store       store.RefreshRecords
	TTL         time.Duration
	RotateBelow time.Duration
	Metrics     *metrics.Metrics

	group singleflight.Group
}

func NewRefreshTokenAuthority(
	codec *jwtx.Codec,
	records store.RefreshRecords,
	ttl, rotateBelow time.Duration,
) *RefreshTokenAuthority {
	if ttl <= 0 {
		ttl = jwtx.DefaultRefreshTokenTTL
	}
	if rotateBelow <= 0 {
		rotateBelow = DefaultRotateBelow
	}
	return &RefreshTokenAuthority{
		Codec:       codec,
		Store:       records,
		TTL:         ttl,
		RotateBelow: rotateBelow,
	}
}

func (r *RefreshTokenAuthority) mint(username string) domain.RefreshRecord {
	claims := jwtx.NewClaims(username, jwtx.KindRefresh, r.TTL, r.Codec.Issuer(), r.Codec.Now())
	return domain.RefreshRecord{
		Username:   username,
		TokenValue: r.Codec.Sign(claims),
		IssuedAt:   claims.IssuedAtTime(),
		ExpiresAt:  claims.ExpiresAtTime(),
	}
}

// Issue creates a new refresh record for username, replacing any existing
// one.
func (r *RefreshTokenAuthority) Issue(ctx context.Context, username string) (domain.RefreshRecord, error) {
	rec := r.mint(username)
	if err := r.Store.PutRefreshRecord(ctx, rec); err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("store refresh record: %w", err)
	}

	slogx.FromContext(ctx).Debug("refresh record issued",
		"username", username,
		"fingerprint", cryptox.FingerprintToken(rec.TokenValue),
		"expires_at", rec.ExpiresAt,
	)
	return rec, nil
}

// Validate checks a presented refresh token against the stored record for
// username and returns that record.
func (r *RefreshTokenAuthority) Validate(ctx context.Context, username, presented string) (domain.RefreshRecord, error) {
	log := slogx.FromContext(ctx)

	claims, err := r.Codec.Verify(presented)
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		if claims.Kind != jwtx.KindRefresh || claims.Username != username {
			return domain.RefreshRecord{}, authError(KindNoRefresh, err)
		}
		r.dropIf(ctx, username, presented)
		return domain.RefreshRecord{}, authError(KindOldRefresh, err)
	case err != nil:
		return domain.RefreshRecord{}, authError(KindNoRefresh, err)
	}
	if claims.Kind != jwtx.KindRefresh {
		return domain.RefreshRecord{}, authError(KindNoRefresh, fmt.Errorf("token kind %q", claims.Kind))
	}
	if claims.Username != username {
		log.Warn("refresh token presented for another user",
			"username", username,
			"possible_tampering", true,
		)
		return domain.RefreshRecord{}, authError(KindNoRefresh, errors.New("subject mismatch"))
	}

	rec, err := r.Store.GetRefreshRecord(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshRecord{}, authError(KindNoRefresh, err)
	}
	if err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("load refresh record: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(rec.TokenValue), []byte(presented)) != 1 {
		log.Warn("superseded refresh token presented",
			"username", username,
			"fingerprint", cryptox.FingerprintToken(presented),
		)
		return domain.RefreshRecord{}, authError(KindNoRefresh, errors.New("refresh token superseded"))
	}

	if rec.Expired(r.Codec.Now()) {
		r.dropIf(ctx, username, rec.TokenValue)
		return domain.RefreshRecord{}, authError(KindOldRefresh, errors.New("refresh record expired"))
	}

	return rec, nil
}

// RotateIfNearExpiry returns current unchanged while it has at least
// RotateBelow left. Otherwise it replaces it. When several callers rotate the
// same record at once exactly one replacement is stored and all of them
// return it.
func (r *RefreshTokenAuthority) RotateIfNearExpiry(
	ctx context.Context,
	current domain.RefreshRecord,
) (domain.RefreshRecord, error) {
	if current.Remaining(r.Codec.Now()) >= r.RotateBelow {
		return current, nil
	}

	// The shared rotation outlives whichever caller started it; each caller
	// only stops waiting when its own context ends.
	ch := r.group.DoChan(current.Username+"\x00"+current.TokenValue, func() (any, error) {
		return r.rotate(context.WithoutCancel(ctx), current)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.RefreshRecord{}, res.Err
		}
		return res.Val.(domain.RefreshRecord), nil
	case <-ctx.Done():
		return domain.RefreshRecord{}, ctx.Err()
	}
}

func (r *RefreshTokenAuthority) rotate(ctx context.Context, current domain.RefreshRecord) (domain.RefreshRecord, error) {
	log := slogx.FromContext(ctx)

	next := r.mint(current.Username)
	err := r.Store.SwapRefreshRecord(ctx, current.TokenValue, next)
	if err == nil {
		r.Metrics.Rotated()
		log.Info("refresh record rotated",
			"username", current.Username,
			"fingerprint", cryptox.FingerprintToken(next.TokenValue),
		)
		return next, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return domain.RefreshRecord{}, fmt.Errorf("rotate refresh record: %w", err)
	}

	// Someone else swapped first; hand back whatever they stored.
	r.Metrics.RotationLost()
	winner, err := r.Store.GetRefreshRecord(ctx, current.Username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshRecord{}, authError(KindNoRefresh, err)
	}
	if err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("reload refresh record: %w", err)
	}
	log.Debug("refresh rotation lost, using concurrent result", "username", current.Username)
	return winner, nil
}

// Invalidate removes the refresh record for username. Removing a missing
// record is not an error.
func (r *RefreshTokenAuthority) Invalidate(ctx context.Context, username string) error {
	if err := r.Store.DeleteRefreshRecord(ctx, username); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

// CheckRefreshFirst confirms username still has a live session before a new
// access token is minted without presenting the refresh token.
func (r *RefreshTokenAuthority) CheckRefreshFirst(ctx context.Context, username string) (domain.RefreshRecord, error) {
	rec, err := r.Store.GetRefreshRecord(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshRecord{}, authError(KindNoRefresh, err)
	}
	if err != nil {
		return domain.RefreshRecord{}, fmt.Errorf("load refresh record: %w", err)
	}
	if rec.Expired(r.Codec.Now()) {
		r.dropIf(ctx, username, rec.TokenValue)
		return domain.RefreshRecord{}, authError(KindNoRefresh, errors.New("refresh record expired"))
	}
	return rec, nil
}

// dropIf lazily deletes an expired record, leaving it alone if it was
// replaced in the meantime.
func (r *RefreshTokenAuthority) dropIf(ctx context.Context, username, value string) {
	err := r.Store.DeleteRefreshRecordIf(ctx, username, value)
	if err != nil && !errors.Is(err, store.ErrConflict) {
		slogx.FromContext(ctx).Warn("failed to drop expired refresh record",
			"username", username,
			"err", err,
		)
	}
}
