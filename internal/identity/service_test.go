package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, Credentials{Phone: "9876543210", Password: "secret1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", user.ReferralCode)
	assert.NotEmpty(t, user.ID)

	authed, err := svc.Authenticate(ctx, Credentials{Phone: "9876543210", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Phone: "12345", Password: "secret1"}, "")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Register(ctx, Credentials{Phone: "987654321x", Password: "secret1"}, "")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.Register(ctx, Credentials{Phone: "9876543210", Password: "short"}, "")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Phone: "9876543210", Password: "secret1"}, "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, Credentials{Phone: "9876543210", Password: "another"}, "")
	assert.ErrorIs(t, err, ErrPhoneTaken)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.Register(ctx, Credentials{Phone: "9876543210", Password: "secret1"}, "")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, Credentials{Phone: "9876543210", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown phone must surface the same error as a bad password.
	_, err = svc.Authenticate(ctx, Credentials{Phone: "1112223334", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
