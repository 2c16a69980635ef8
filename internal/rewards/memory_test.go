package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryUpdateRollsBackOnError(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, "u1"))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "u1", func(acc *Account) error {
		acc.Coins = 999
		acc.appendRedemption(Redemption{ID: "r1", UserID: "u1"})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.Coins)

	history, err := repo.History(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryRepositoryCommitsAccountAndLedgerTogether(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, "u1"))

	_, err := repo.Update(ctx, "u1", func(acc *Account) error {
		acc.Coins = 500
		acc.bumpRedeemCount(100)
		acc.appendRedemption(Redemption{ID: "r1", UserID: "u1", Amount: 100, CoinsDebited: 1000, Status: StatusPending})
		return nil
	})
	require.NoError(t, err)

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), acc.Coins)
	assert.Equal(t, 1, acc.RedeemCounts[100])

	history, err := repo.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "r1", history[0].ID)
}

func TestMemoryRepositoryHistoryNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, "u1"))

	for _, id := range []string{"first", "second", "third"} {
		_, err := repo.Update(ctx, "u1", func(acc *Account) error {
			acc.appendRedemption(Redemption{ID: id, UserID: "u1"})
			return nil
		})
		require.NoError(t, err)
	}

	history, err := repo.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "third", history[0].ID)
	assert.Equal(t, "first", history[2].ID)
}

func TestMemoryRepositoryConcurrentUpdatesSerialize(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, "u1"))

	const workers = 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "u1", func(acc *Account) error {
				acc.Coins++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), acc.Coins)
}

func TestMemoryRepositoryGetReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, "u1"))

	acc, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	acc.Coins = 12345
	acc.bumpRedeemCount(100)

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Coins)
	assert.Empty(t, stored.RedeemCounts)
}

func TestMemoryRepositoryUnknownUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "ghost")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = repo.Update(ctx, "ghost", func(acc *Account) error { return nil })
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
