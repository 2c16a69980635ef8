package rewards

// Tier describes one fixed cash redemption option.
type Tier struct {
	Amount   int64
	CoinCost int64
	MaxCount int
}

// Policy holds the earn and redemption rules the engine applies. Keeping the
// numbers here, rather than scattered through the handlers, lets the engine
// rules stay data-driven and testable against synthetic policies.
type Policy struct {
	CoinsPerAd   int64
	MaxAdsPerDay int
	Tiers        []Tier
}

// DefaultPolicy returns the production rules: 5 coins per ad, 50 ads per day,
// cash tiers 100/200/300 with lifetime caps of 2/1/1 redemptions.
func DefaultPolicy() Policy {
	return Policy{
		CoinsPerAd:   5,
		MaxAdsPerDay: 50,
		Tiers: []Tier{
			{Amount: 100, CoinCost: 1000, MaxCount: 2},
			{Amount: 200, CoinCost: 2000, MaxCount: 1},
			{Amount: 300, CoinCost: 3000, MaxCount: 1},
		},
	}
}

// TierFor returns the tier matching the requested cash amount.
func (p Policy) TierFor(amount int64) (Tier, bool) {
	for _, t := range p.Tiers {
		if t.Amount == amount {
			return t, true
		}
	}
	return Tier{}, false
}
