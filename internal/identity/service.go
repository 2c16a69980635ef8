package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	phoneLength       = 10
	minPasswordLength = 6
)

var (
	// ErrInvalidPhone indicates the phone number is not exactly ten digits.
	ErrInvalidPhone = errors.New("phone number must be 10 digits")
	// ErrWeakPassword indicates the password is shorter than six characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrInvalidCredentials indicates the phone/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid phone number or password")
)

// Service manages account lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new user with a hashed password. The referral code is
// the phone number itself, so users can share their number directly.
func (s *Service) Register(ctx context.Context, creds Credentials, referredBy string) (User, error) {
	if !validPhone(creds.Phone) {
		return User{}, ErrInvalidPhone
	}
	if len(creds.Password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Phone:        creds.Phone,
		PasswordHash: hash,
		ReferralCode: creds.Phone,
		ReferredBy:   referredBy,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies a phone/password pair. Lookup failures and hash
// mismatches both map to ErrInvalidCredentials so callers cannot probe for
// registered numbers.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByPhone(ctx, creds.Phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// FindByID loads a user by identifier.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByReferralCode resolves a referral code to its owner.
func (s *Service) FindByReferralCode(ctx context.Context, code string) (User, error) {
	return s.repo.FindByReferralCode(ctx, code)
}

func validPhone(phone string) bool {
	if len(phone) != phoneLength {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
