// Package storetest holds the behavioural contract every RefreshRecords
// driver must satisfy.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/actionprice/auth/internal/auth/domain"
	"github.com/actionprice/auth/internal/auth/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRefreshRecords runs the contract against a fresh backend from newRepo
// for each subtest.
func RunRefreshRecords(t *testing.T, newRepo func(t *testing.T) store.RefreshRecords) {
	t.Helper()

	ctx := context.Background()
	base := time.Date(2024, 11, 8, 12, 0, 0, 0, time.UTC)
	record := func(user, value string) domain.RefreshRecord {
		return domain.RefreshRecord{
			Username:   user,
			TokenValue: value,
			IssuedAt:   base,
			ExpiresAt:  base.Add(7 * 24 * time.Hour),
		}
	}

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetRefreshRecord(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		repo := newRepo(t)
		want := record("alice", "tok-1")
		require.NoError(t, repo.PutRefreshRecord(ctx, want))

		got, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, want.Username, got.Username)
		require.Equal(t, want.TokenValue, got.TokenValue)
		require.True(t, want.IssuedAt.Equal(got.IssuedAt))
		require.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("put overwrites", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-1")))
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-2")))

		got, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "tok-2", got.TokenValue)
	})

	t.Run("records are per user", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-a")))
		require.NoError(t, repo.PutRefreshRecord(ctx, record("bob", "tok-b")))
		require.NoError(t, repo.DeleteRefreshRecord(ctx, "alice"))

		got, err := repo.GetRefreshRecord(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, "tok-b", got.TokenValue)
	})

	t.Run("swap with expected value", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-1")))

		next := record("alice", "tok-2")
		next.ExpiresAt = next.ExpiresAt.Add(time.Hour)
		require.NoError(t, repo.SwapRefreshRecord(ctx, "tok-1", next))

		got, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "tok-2", got.TokenValue)
		require.True(t, next.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("swap with stale value conflicts", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-1")))

		err := repo.SwapRefreshRecord(ctx, "tok-0", record("alice", "tok-2"))
		require.ErrorIs(t, err, store.ErrConflict)

		got, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "tok-1", got.TokenValue)
	})

	t.Run("swap on missing record conflicts", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.SwapRefreshRecord(ctx, "tok-1", record("alice", "tok-2"))
		require.ErrorIs(t, err, store.ErrConflict)

		_, err = repo.GetRefreshRecord(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent swaps have one winner", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-0")))

		const n = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins []string
		)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				value := "tok-next-" + string(rune('a'+i))
				if err := repo.SwapRefreshRecord(ctx, "tok-0", record("alice", value)); err == nil {
					mu.Lock()
					wins = append(wins, value)
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, store.ErrConflict)
				}
			}()
		}
		wg.Wait()

		require.Len(t, wins, 1)
		got, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, wins[0], got.TokenValue)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-1")))
		require.NoError(t, repo.DeleteRefreshRecord(ctx, "alice"))
		require.NoError(t, repo.DeleteRefreshRecord(ctx, "alice"))

		_, err := repo.GetRefreshRecord(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete if", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.PutRefreshRecord(ctx, record("alice", "tok-1")))

		require.ErrorIs(t, repo.DeleteRefreshRecordIf(ctx, "alice", "tok-0"), store.ErrConflict)
		_, err := repo.GetRefreshRecord(ctx, "alice")
		require.NoError(t, err, "mismatched delete leaves the record")

		require.NoError(t, repo.DeleteRefreshRecordIf(ctx, "alice", "tok-1"))
		_, err = repo.GetRefreshRecord(ctx, "alice")
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, repo.DeleteRefreshRecordIf(ctx, "alice", "tok-1"), store.ErrConflict)
	})
}
