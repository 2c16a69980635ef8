package auth

import (
	"context"
	"errors"

	"github.com/adrupee/adrupee/internal/config"
	"github.com/adrupee/adrupee/internal/identity"
)

// Service issues and refreshes session tokens for authenticated users.
type Service struct {
	cfg config.Config
	ids *identity.Service
}

// NewService builds an auth service.
func NewService(cfg config.Config, ids *identity.Service) *Service {
	return &Service{cfg: cfg, ids: ids}
}

// TokenPair bundles the access and refresh tokens returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, creds identity.Credentials) (identity.User, TokenPair, error) {
	user, err := s.ids.Authenticate(ctx, creds)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	access, err := GenerateToken(user.ID, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}
	refresh, err := GenerateToken(user.ID, []byte(s.cfg.JWTSecret), s.cfg.RefreshTokenTTL)
	if err != nil {
		return identity.User{}, TokenPair{}, err
	}

	return user, TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh validates a refresh token and issues a fresh access token. The
// user must still exist.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	userID, err := ParseToken(refreshToken, []byte(s.cfg.JWTSecret))
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	if _, err := s.ids.FindByID(ctx, userID); err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return "", 0, ErrInvalidToken
		}
		return "", 0, err
	}

	access, err := GenerateToken(userID, []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}
