package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrPhoneTaken indicates the phone number is already registered.
	ErrPhoneTaken = errors.New("phone number already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByReferralCode(ctx context.Context, code string) (User, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A unique violation on the phone column maps to
// ErrPhoneTaken.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	var referredBy *string
	if user.ReferredBy != "" {
		referredBy = &user.ReferredBy
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, phone, password_hash, referral_code, referred_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, user.Phone, user.PasswordHash, user.ReferralCode, referredBy, user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrPhoneTaken
	}
	return err
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.findOne(ctx, `WHERE phone = $1`, phone)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.findOne(ctx, `WHERE id = $1`, userID)
}

// FindByReferralCode fetches the user owning the given referral code.
func (r *PostgresRepository) FindByReferralCode(ctx context.Context, code string) (User, error) {
	return r.findOne(ctx, `WHERE referral_code = $1`, code)
}

func (r *PostgresRepository) findOne(ctx context.Context, where string, arg any) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, phone, password_hash, referral_code, referred_by, created_at FROM users `+where, arg)
	var (
		id         uuid.UUID
		referredBy *string
		createdAt  time.Time
		user       User
	)
	if err := row.Scan(&id, &user.Phone, &user.PasswordHash, &user.ReferralCode, &referredBy, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	if referredBy != nil {
		user.ReferredBy = *referredBy
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
