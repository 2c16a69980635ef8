package rewards

import "context"

// Repository persists reward accounts and their redemption ledger.
//
// Update loads the current account state, runs fn against it, and commits the
// mutated account together with any ledger entries fn appended, atomically
// and only when fn returns nil. Updates to the same user serialize, so two
// concurrent watch-ad or redeem calls can never both act on the same
// pre-mutation counters. A failed commit leaves no partial state behind.
type Repository interface {
	Create(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (Account, error)
	Update(ctx context.Context, userID string, fn func(*Account) error) (Account, error)
	History(ctx context.Context, userID string) ([]Redemption, error)
}
