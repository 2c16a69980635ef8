package rewards

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores reward accounts in PostgreSQL. Update takes a row
// lock on the account so read-modify-write cycles for one user serialize,
// and commits the account, quota counters and ledger inserts in a single
// transaction.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed rewards repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a zeroed account for the user.
func (r *PostgresRepository) Create(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO reward_accounts (user_id) VALUES ($1)`, uid)
	return err
}

// Get fetches the account without locking. Intended for read paths only;
// mutations must go through Update.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (Account, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	return r.load(ctx, r.db, uid, false)
}

// Update applies fn under a SELECT ... FOR UPDATE row lock and commits the
// resulting state plus any appended ledger entries, or rolls everything back
// when fn fails.
func (r *PostgresRepository) Update(ctx context.Context, userID string, fn func(*Account) error) (Account, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Account{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	acc, err := r.load(ctx, tx, uid, true)
	if err != nil {
		return Account{}, err
	}

	if err := fn(&acc); err != nil {
		return Account{}, err
	}

	var lastWatch *time.Time
	if !acc.LastAdWatch.IsZero() {
		t := acc.LastAdWatch
		lastWatch = &t
	}
	if _, err := tx.Exec(ctx, `UPDATE reward_accounts
        SET coins = $2, ads_watched_today = $3, last_ad_watch = $4,
            lifetime_ads = $5, lifetime_earnings = $6, referrals = $7,
            referral_bonus_received = $8, referred_user_bonus_25 = $9,
            referrer_bonus_50 = $10, updated_at = now()
        WHERE user_id = $1`,
		uid, acc.Coins, acc.AdsWatchedToday, lastWatch,
		acc.LifetimeAds, acc.LifetimeEarnings, acc.Referrals,
		acc.ReferralBonusReceived, acc.ReferredUserBonus25Ads, acc.ReferrerBonus50Ads); err != nil {
		return Account{}, err
	}

	for amount, used := range acc.RedeemCounts {
		if _, err := tx.Exec(ctx, `INSERT INTO redeem_quotas (user_id, tier_amount, used)
            VALUES ($1, $2, $3)
            ON CONFLICT (user_id, tier_amount) DO UPDATE SET used = EXCLUDED.used`,
			uid, amount, used); err != nil {
			return Account{}, err
		}
	}

	for _, entry := range acc.appended {
		entryID, err := uuid.Parse(entry.ID)
		if err != nil {
			return Account{}, err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO redemptions (id, user_id, amount, coins_debited, payment_detail, status, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			entryID, uid, entry.Amount, entry.CoinsDebited, entry.PaymentDetail, entry.Status, entry.CreatedAt); err != nil {
			return Account{}, err
		}
	}
	acc.appended = nil

	if err := tx.Commit(ctx); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// History returns the redemption ledger, newest first.
func (r *PostgresRepository) History(ctx context.Context, userID string) ([]Redemption, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, amount, coins_debited, payment_detail, status, created_at
        FROM redemptions WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Redemption
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			entry     Redemption
		)
		if err := rows.Scan(&id, &entry.Amount, &entry.CoinsDebited, &entry.PaymentDetail, &entry.Status, &createdAt); err != nil {
			return nil, err
		}
		entry.ID = id.String()
		entry.UserID = userID
		entry.CreatedAt = createdAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresRepository) load(ctx context.Context, q queryer, uid uuid.UUID, forUpdate bool) (Account, error) {
	query := `SELECT coins, ads_watched_today, last_ad_watch, lifetime_ads, lifetime_earnings,
        referrals, referral_bonus_received, referred_user_bonus_25, referrer_bonus_50
        FROM reward_accounts WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		acc       Account
		lastWatch *time.Time
	)
	if err := q.QueryRow(ctx, query, uid).Scan(
		&acc.Coins, &acc.AdsWatchedToday, &lastWatch, &acc.LifetimeAds, &acc.LifetimeEarnings,
		&acc.Referrals, &acc.ReferralBonusReceived, &acc.ReferredUserBonus25Ads, &acc.ReferrerBonus50Ads); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	acc.UserID = uid.String()
	if lastWatch != nil {
		acc.LastAdWatch = *lastWatch
	}

	rows, err := q.Query(ctx, `SELECT tier_amount, used FROM redeem_quotas WHERE user_id = $1`, uid)
	if err != nil {
		return Account{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			amount int64
			used   int
		)
		if err := rows.Scan(&amount, &used); err != nil {
			return Account{}, err
		}
		if acc.RedeemCounts == nil {
			acc.RedeemCounts = make(map[int64]int)
		}
		acc.RedeemCounts[amount] = used
	}
	return acc, rows.Err()
}
