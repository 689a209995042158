package sqlite

import (
	"context"
	"time"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/store"
)

type refreshRecordsRepo struct {
	db  dbtx
	now func() time.Time
}

func (r *refreshRecordsRepo) GetRefreshRecord(ctx context.Context, username string) (domain.RefreshRecord, error) {
	var (
		rec                 domain.RefreshRecord
		issuedAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT username, token_value, issued_at, expires_at
		   FROM refresh_records WHERE username = ?`, username,
	).Scan(&rec.Username, &rec.TokenValue, &issuedAt, &expiresAt)
	if err != nil {
		return domain.RefreshRecord{}, mapNotFound(err)
	}

	rec.IssuedAt = fromUnix(issuedAt)
	rec.ExpiresAt = fromUnix(expiresAt)
	return rec, nil
}

func (r *refreshRecordsRepo) PutRefreshRecord(ctx context.Context, rec domain.RefreshRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_records (username, token_value, issued_at, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (username) DO UPDATE SET
		     token_value = excluded.token_value,
		     issued_at   = excluded.issued_at,
		     expires_at  = excluded.expires_at,
		     updated_at  = excluded.updated_at`,
		rec.Username, rec.TokenValue, rec.IssuedAt.Unix(), rec.ExpiresAt.Unix(), r.now().Unix(),
	)
	return mapUniqueViolation(err)
}

// SwapRefreshRecord is a single conditional UPDATE, so two callers racing
// on the same expected value cannot both win.
func (r *refreshRecordsRepo) SwapRefreshRecord(
	ctx context.Context,
	expected string,
	next domain.RefreshRecord,
) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_records
		    SET token_value = ?, issued_at = ?, expires_at = ?, updated_at = ?
		  WHERE username = ? AND token_value = ?`,
		next.TokenValue, next.IssuedAt.Unix(), next.ExpiresAt.Unix(), r.now().Unix(),
		next.Username, expected,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return requireOneRow(res)
}

func (r *refreshRecordsRepo) DeleteRefreshRecord(ctx context.Context, username string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_records WHERE username = ?`, username)
	return err
}

func (r *refreshRecordsRepo) DeleteRefreshRecordIf(ctx context.Context, username, expected string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_records WHERE username = ? AND token_value = ?`,
		username, expected,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrConflict
	}
	return nil
}
