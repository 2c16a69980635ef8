package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrupee/adrupee/internal/notification"
)

// Service exposes the rewards operations: earn, redeem, profile and history.
// It owns no rules itself. The engine decides, the repository guarantees
// atomicity per account.
type Service struct {
	repo     Repository
	engine   Engine
	notifier notification.Notifier
	now      func() time.Time
}

// NewService builds a rewards service applying the given policy.
func NewService(repo Repository, policy Policy, notifier notification.Notifier) *Service {
	return &Service{
		repo:     repo,
		engine:   NewEngine(policy),
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Policy returns the active reward rules.
func (s *Service) Policy() Policy {
	return s.engine.Policy()
}

// CreateAccount provisions a zeroed reward account for a new user.
func (s *Service) CreateAccount(ctx context.Context, userID string) error {
	return s.repo.Create(ctx, userID)
}

// WatchAd credits one ad view. When the daily cap rejects the earn, any
// window reset computed along the way is still persisted before the error is
// returned: the reset belongs to the new day, not to the rejected earn.
func (s *Service) WatchAd(ctx context.Context, userID string) (EarnResult, error) {
	var (
		res      EarnResult
		limitErr error
	)
	_, err := s.repo.Update(ctx, userID, func(acc *Account) error {
		r, err := s.engine.WatchAd(acc, s.now())
		if errors.Is(err, ErrDailyLimitReached) {
			limitErr = err
			return nil
		}
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return EarnResult{}, err
	}
	if limitErr != nil {
		return EarnResult{}, limitErr
	}
	return res, nil
}

// RedeemResult reports a successful redemption.
type RedeemResult struct {
	NewBalance int64
	Entry      Redemption
}

// Redeem debits the balance for one cash tier and queues a pending payout.
func (s *Service) Redeem(ctx context.Context, userID string, amount int64, paymentDetail string) (RedeemResult, error) {
	var entry Redemption
	acc, err := s.repo.Update(ctx, userID, func(acc *Account) error {
		e, err := s.engine.Redeem(acc, amount, paymentDetail, s.now())
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return RedeemResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindRedemptionRequested,
			Destination: userID,
			Body:        fmt.Sprintf("redemption of %d requested for %d coins", entry.Amount, entry.CoinsDebited),
		})
	}

	return RedeemResult{NewBalance: acc.Coins, Entry: entry}, nil
}

// RecordReferral bumps the referrer's lifetime referral counter.
func (s *Service) RecordReferral(ctx context.Context, referrerID string) error {
	_, err := s.repo.Update(ctx, referrerID, func(acc *Account) error {
		acc.Referrals++
		return nil
	})
	return err
}

// TierStatus reports a user's standing against one redemption tier.
type TierStatus struct {
	Amount    int64 `json:"amount"`
	CoinCost  int64 `json:"coin_cost"`
	Used      int   `json:"used"`
	MaxCount  int   `json:"max_count"`
	Completed bool  `json:"completed"`
}

// Profile is the read-model snapshot returned to the client.
type Profile struct {
	Coins             int64
	AdsWatchedToday   int
	AdsRemainingToday int
	LifetimeAds       int64
	LifetimeEarnings  int64
	Referrals         int64
	Tiers             []TierStatus
}

// Profile returns the account snapshot with the daily counter normalized
// against the current date. The normalization happens on the view only; the
// read path persists nothing.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	acc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	s.engine.ResetDailyWindow(&acc, s.now())

	policy := s.engine.Policy()
	p := Profile{
		Coins:             acc.Coins,
		AdsWatchedToday:   acc.AdsWatchedToday,
		AdsRemainingToday: policy.MaxAdsPerDay - acc.AdsWatchedToday,
		LifetimeAds:       acc.LifetimeAds,
		LifetimeEarnings:  acc.LifetimeEarnings,
		Referrals:         acc.Referrals,
	}
	for _, tier := range policy.Tiers {
		used := acc.redeemCount(tier.Amount)
		p.Tiers = append(p.Tiers, TierStatus{
			Amount:    tier.Amount,
			CoinCost:  tier.CoinCost,
			Used:      used,
			MaxCount:  tier.MaxCount,
			Completed: used >= tier.MaxCount,
		})
	}
	return p, nil
}

// History returns the redemption ledger, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]Redemption, error) {
	return s.repo.History(ctx, userID)
}
