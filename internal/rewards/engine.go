package rewards

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound indicates no reward account exists for the user.
	ErrAccountNotFound = errors.New("reward account not found")
	// ErrDailyLimitReached indicates the user hit the per-day ad cap.
	ErrDailyLimitReached = errors.New("daily ad limit reached")
	// ErrInvalidAmount indicates the requested cash amount is not a known tier.
	ErrInvalidAmount = errors.New("invalid redemption amount")
	// ErrInsufficientBalance indicates the coin balance cannot cover the tier cost.
	ErrInsufficientBalance = errors.New("insufficient coin balance")
	// ErrRedeemLimitReached indicates the tier's lifetime redemption cap is exhausted.
	ErrRedeemLimitReached = errors.New("redemption limit reached for this amount")
)

// Engine applies the coin accrual and redemption rules to an account. All
// methods mutate the account in memory only; persistence is the caller's
// concern.
type Engine struct {
	policy Policy
}

// NewEngine builds an engine bound to the given policy.
func NewEngine(policy Policy) Engine {
	return Engine{policy: policy}
}

// Policy returns the rules the engine enforces.
func (e Engine) Policy() Policy {
	return e.policy
}

// sameDay reports whether both instants fall on the same calendar date in
// server-local time. The window is a day boundary, not an elapsed 24 hours.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ResetDailyWindow zeroes the daily ad counter on first access of a new
// calendar day. A zero LastAdWatch counts as "not today", so brand-new
// accounts take the reset path too. Idempotent within one day.
func (e Engine) ResetDailyWindow(acc *Account, now time.Time) {
	if acc.LastAdWatch.IsZero() || !sameDay(acc.LastAdWatch, now) {
		acc.AdsWatchedToday = 0
		acc.LastAdWatch = now
	}
}

// EarnResult reports the outcome of a successful watch-ad mutation.
type EarnResult struct {
	CoinsEarned       int64
	NewBalance        int64
	AdsWatchedToday   int
	AdsRemainingToday int
}

// WatchAd credits one ad view. The daily window is normalized first, so a
// rejected call may still leave a reset behind that the caller should
// persist. On success exactly one balance mutation is applied; on rejection
// no counter changes beyond the reset.
func (e Engine) WatchAd(acc *Account, now time.Time) (EarnResult, error) {
	e.ResetDailyWindow(acc, now)

	if acc.AdsWatchedToday >= e.policy.MaxAdsPerDay {
		return EarnResult{}, ErrDailyLimitReached
	}

	acc.AdsWatchedToday++
	acc.LifetimeAds++
	acc.Coins += e.policy.CoinsPerAd
	acc.LifetimeEarnings += e.policy.CoinsPerAd

	return EarnResult{
		CoinsEarned:       e.policy.CoinsPerAd,
		NewBalance:        acc.Coins,
		AdsWatchedToday:   acc.AdsWatchedToday,
		AdsRemainingToday: e.policy.MaxAdsPerDay - acc.AdsWatchedToday,
	}, nil
}

// Redeem debits the account for one cash tier and appends a pending ledger
// entry. The validation order is fixed (unknown amount, then balance, then
// the per-tier lifetime cap) so the surfaced error is deterministic when
// several conditions fail at once. Nothing mutates unless every check passes.
func (e Engine) Redeem(acc *Account, amount int64, paymentDetail string, now time.Time) (Redemption, error) {
	tier, ok := e.policy.TierFor(amount)
	if !ok {
		return Redemption{}, ErrInvalidAmount
	}
	if acc.Coins < tier.CoinCost {
		return Redemption{}, ErrInsufficientBalance
	}
	if acc.redeemCount(amount) >= tier.MaxCount {
		return Redemption{}, ErrRedeemLimitReached
	}

	acc.Coins -= tier.CoinCost
	acc.bumpRedeemCount(amount)

	entry := Redemption{
		ID:            uuid.NewString(),
		UserID:        acc.UserID,
		Amount:        amount,
		CoinsDebited:  tier.CoinCost,
		PaymentDetail: paymentDetail,
		Status:        StatusPending,
		CreatedAt:     now.UTC(),
	}
	acc.appendRedemption(entry)

	return entry, nil
}
