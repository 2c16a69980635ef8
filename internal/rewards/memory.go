package rewards

import (
	"context"
	"errors"
	"sync"
)

type memoryAccount struct {
	mu      sync.Mutex
	acc     Account
	history []Redemption
}

type memoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

// NewMemoryRepository builds a concurrency-safe in-memory rewards store for
// tests and dev mode. A per-account mutex gives Update the same serialization
// guarantee the Postgres row lock provides.
func NewMemoryRepository() Repository {
	return &memoryRepository{accounts: make(map[string]*memoryAccount)}
}

func (r *memoryRepository) Create(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[userID]; exists {
		return errors.New("reward account exists")
	}
	r.accounts[userID] = &memoryAccount{acc: Account{UserID: userID}}
	return nil
}

func (r *memoryRepository) Get(_ context.Context, userID string) (Account, error) {
	entry, err := r.lookup(userID)
	if err != nil {
		return Account{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneAccount(entry.acc), nil
}

func (r *memoryRepository) Update(_ context.Context, userID string, fn func(*Account) error) (Account, error) {
	entry, err := r.lookup(userID)
	if err != nil {
		return Account{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	// fn runs against a copy so a failed mutation leaves the stored state
	// untouched.
	working := cloneAccount(entry.acc)
	if err := fn(&working); err != nil {
		return Account{}, err
	}

	entry.history = append(entry.history, working.appended...)
	working.appended = nil
	entry.acc = cloneAccount(working)
	return working, nil
}

func (r *memoryRepository) History(_ context.Context, userID string) ([]Redemption, error) {
	entry, err := r.lookup(userID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	out := make([]Redemption, len(entry.history))
	// Newest first, matching the Postgres ordering.
	for i, e := range entry.history {
		out[len(entry.history)-1-i] = e
	}
	return out, nil
}

func (r *memoryRepository) lookup(userID string) (*memoryAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return entry, nil
}

func cloneAccount(acc Account) Account {
	clone := acc
	clone.appended = nil
	if acc.RedeemCounts != nil {
		clone.RedeemCounts = make(map[int64]int, len(acc.RedeemCounts))
		for k, v := range acc.RedeemCounts {
			clone.RedeemCounts[k] = v
		}
	}
	return clone
}
