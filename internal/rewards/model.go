package rewards

import "time"

// Redemption statuses. The core only ever writes pending; completed and
// failed are set by the out-of-band payout process.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Account is the per-user rewards state: coin balance, daily and lifetime
// counters, and per-tier redemption quotas.
type Account struct {
	UserID           string
	Coins            int64
	AdsWatchedToday  int
	LastAdWatch      time.Time // zero value means the user never watched an ad
	LifetimeAds      int64
	LifetimeEarnings int64
	Referrals        int64

	// Bonus flags are tracked in the schema but no payout rule is wired
	// yet; the engine never mutates them.
	ReferralBonusReceived  bool
	ReferredUserBonus25Ads bool
	ReferrerBonus50Ads     bool

	// RedeemCounts maps a tier's cash amount to the number of lifetime
	// redemptions already taken against it.
	RedeemCounts map[int64]int

	// Ledger entries appended during the current mutation, committed
	// together with the account by Repository.Update.
	appended []Redemption
}

// Redemption is one append-only ledger entry recording a cash-out request.
type Redemption struct {
	ID            string
	UserID        string
	Amount        int64
	CoinsDebited  int64
	PaymentDetail string
	Status        string
	CreatedAt     time.Time
}

func (a *Account) appendRedemption(r Redemption) {
	a.appended = append(a.appended, r)
}

func (a *Account) redeemCount(amount int64) int {
	if a.RedeemCounts == nil {
		return 0
	}
	return a.RedeemCounts[amount]
}

func (a *Account) bumpRedeemCount(amount int64) {
	if a.RedeemCounts == nil {
		a.RedeemCounts = make(map[int64]int)
	}
	a.RedeemCounts[amount]++
}
