package rewards

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	today     = time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	yesterday = today.AddDate(0, 0, -1)
)

func TestResetDailyWindowNewDay(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{AdsWatchedToday: 37, LastAdWatch: yesterday}

	e.ResetDailyWindow(&acc, today)

	assert.Equal(t, 0, acc.AdsWatchedToday)
	assert.Equal(t, today, acc.LastAdWatch)
}

func TestResetDailyWindowSameDayNoChange(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	watched := today.Add(-2 * time.Hour)
	acc := Account{AdsWatchedToday: 12, LastAdWatch: watched}

	e.ResetDailyWindow(&acc, today)

	assert.Equal(t, 12, acc.AdsWatchedToday)
	assert.Equal(t, watched, acc.LastAdWatch)
}

func TestResetDailyWindowNeverWatched(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{}

	e.ResetDailyWindow(&acc, today)

	assert.Equal(t, 0, acc.AdsWatchedToday)
	assert.Equal(t, today, acc.LastAdWatch)
}

func TestResetDailyWindowIdempotent(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{AdsWatchedToday: 50, LastAdWatch: yesterday}

	e.ResetDailyWindow(&acc, today)
	after := acc
	e.ResetDailyWindow(&acc, today.Add(time.Hour))

	assert.Equal(t, after.AdsWatchedToday, acc.AdsWatchedToday)
	assert.Equal(t, after.LastAdWatch, acc.LastAdWatch)
}

func TestWatchAdCreditsCoins(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 100, AdsWatchedToday: 3, LastAdWatch: today.Add(-time.Hour), LifetimeAds: 40, LifetimeEarnings: 200}

	res, err := e.WatchAd(&acc, today)
	require.NoError(t, err)

	assert.Equal(t, int64(105), acc.Coins)
	assert.Equal(t, 4, acc.AdsWatchedToday)
	assert.Equal(t, int64(41), acc.LifetimeAds)
	assert.Equal(t, int64(205), acc.LifetimeEarnings)
	assert.Equal(t, int64(105), res.NewBalance)
	assert.Equal(t, 46, res.AdsRemainingToday)
}

func TestWatchAdDailyLimit(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 250, AdsWatchedToday: 50, LastAdWatch: today.Add(-time.Minute), LifetimeAds: 50}

	_, err := e.WatchAd(&acc, today)
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	// No counter moves on rejection.
	assert.Equal(t, int64(250), acc.Coins)
	assert.Equal(t, 50, acc.AdsWatchedToday)
	assert.Equal(t, int64(50), acc.LifetimeAds)
}

func TestWatchAdResetsBeforeLimitCheck(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{AdsWatchedToday: 50, LastAdWatch: yesterday}

	res, err := e.WatchAd(&acc, today)
	require.NoError(t, err)

	assert.Equal(t, 1, acc.AdsWatchedToday)
	assert.Equal(t, int64(5), acc.Coins)
	assert.Equal(t, 49, res.AdsRemainingToday)
}

func TestRedeemSuccess(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{UserID: "u1", Coins: 1200}

	entry, err := e.Redeem(&acc, 100, "upi@bank", today)
	require.NoError(t, err)

	assert.Equal(t, int64(200), acc.Coins)
	assert.Equal(t, 1, acc.RedeemCounts[100])
	assert.Equal(t, int64(100), entry.Amount)
	assert.Equal(t, int64(1000), entry.CoinsDebited)
	assert.Equal(t, StatusPending, entry.Status)
	require.Len(t, acc.appended, 1)
}

func TestRedeemInvalidAmount(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 5000}

	_, err := e.Redeem(&acc, 150, "", today)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, int64(5000), acc.Coins)
	assert.Empty(t, acc.appended)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 0}

	_, err := e.Redeem(&acc, 100, "", today)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(0), acc.Coins)
	assert.Empty(t, acc.RedeemCounts)
	assert.Empty(t, acc.appended)
}

func TestRedeemLimitReached(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 5000, RedeemCounts: map[int64]int{200: 1}}

	_, err := e.Redeem(&acc, 200, "", today)
	assert.ErrorIs(t, err, ErrRedeemLimitReached)
	assert.Equal(t, int64(5000), acc.Coins)
	assert.Equal(t, 1, acc.RedeemCounts[200])
	assert.Empty(t, acc.appended)
}

func TestRedeemErrorPrecedence(t *testing.T) {
	e := NewEngine(DefaultPolicy())

	// Unknown amount wins over everything else.
	broke := Account{Coins: 0}
	_, err := e.Redeem(&broke, 999, "", today)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Balance is checked before the lifetime limit.
	maxedAndBroke := Account{Coins: 10, RedeemCounts: map[int64]int{200: 1}}
	_, err = e.Redeem(&maxedAndBroke, 200, "", today)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestRedeemExhaustsTier(t *testing.T) {
	e := NewEngine(DefaultPolicy())
	acc := Account{Coins: 3000}

	_, err := e.Redeem(&acc, 100, "", today)
	require.NoError(t, err)
	_, err = e.Redeem(&acc, 100, "", today)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acc.Coins)

	_, err = e.Redeem(&acc, 100, "", today)
	assert.ErrorIs(t, err, ErrRedeemLimitReached)
	assert.Equal(t, int64(1000), acc.Coins)
	assert.GreaterOrEqual(t, acc.Coins, int64(0))
}

func TestTierForUnknownAmount(t *testing.T) {
	p := DefaultPolicy()
	_, ok := p.TierFor(100)
	assert.True(t, ok)
	_, ok = p.TierFor(250)
	assert.False(t, ok)
}
