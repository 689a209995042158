package store

import (
	"context"
	"errors"

	"github.com/actionprice/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict means a compare-and-swap lost: the stored value was not the
	// one the caller expected (or there was no stored value at all).
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface for the service database. It
// exposes sub-repositories so transactional code cannot accidentally open a
// second transaction from inside the first.
type Store interface {
	Users() Users
	RefreshRecords() RefreshRecords

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Users is the read/write side of the user directory.
type Users interface {
	// GetUserByUsername is used during login and on every authenticated request.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user. Returns ErrAlreadyExists when the
	// username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash replaces the stored hash, used to upgrade imported
	// bcrypt hashes after a successful login. Returns ErrNotFound for unknown
	// users.
	UpdatePasswordHash(ctx context.Context, username, hash string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

// RefreshRecords persists at most one refresh record per username. Every
// method is atomic on its own; implementations must serialise writes to the
// same username.
type RefreshRecords interface {
	// GetRefreshRecord returns the record for username or ErrNotFound.
	GetRefreshRecord(ctx context.Context, username string) (domain.RefreshRecord, error)

	// PutRefreshRecord creates or overwrites the record for rec.Username.
	PutRefreshRecord(ctx context.Context, rec domain.RefreshRecord) error

	// SwapRefreshRecord replaces the record for next.Username only if its
	// current token value equals expected. Returns ErrConflict otherwise.
	SwapRefreshRecord(ctx context.Context, expected string, next domain.RefreshRecord) error

	// DeleteRefreshRecord removes the record for username. Deleting a missing
	// record is not an error.
	DeleteRefreshRecord(ctx context.Context, username string) error

	// DeleteRefreshRecordIf removes the record only while it still holds
	// expected. Returns ErrConflict otherwise.
	DeleteRefreshRecordIf(ctx context.Context, username, expected string) error
}

// CredentialStore is a standalone refresh record backend that can be health
// checked and closed, e.g. Redis.
type CredentialStore interface {
	RefreshRecords
	Ping(ctx context.Context) error
	Close() error
}
