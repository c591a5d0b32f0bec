package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

func newAuthTestService(t *testing.T) AuthService {
	t.Helper()
	stores := store.NewFileStores(t.TempDir())
	return NewAuthService(stores.Users, "test-secret", time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, &models.SignupRequest{
		Username: "priya",
		Email:    "Priya@Example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Token)
	assert.Equal(t, "priya@example.com", signed.User.Email, "emails are stored lowercased")
	assert.Empty(t, signed.User.Password, "hash never leaves the service")

	logged, err := svc.Login(ctx, &models.LoginRequest{Email: "priya@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "priya@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, &models.SignupRequest{Username: "a", Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &models.SignupRequest{Username: "b", Email: "A@EXAMPLE.COM", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestValidateToken(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, &models.SignupRequest{Username: "priya", Email: "priya@example.com", Password: "pw"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with another secret fails verification.
	other := NewAuthService(store.NewFileStores(t.TempDir()).Users, "different-secret", time.Hour)
	foreign, err := other.Signup(ctx, &models.SignupRequest{Username: "x", Email: "x@example.com", Password: "pw"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteUser(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	signed, err := svc.Signup(ctx, &models.SignupRequest{Username: "priya", Email: "priya@example.com", Password: "pw"})
	require.NoError(t, err)

	deleted, err := svc.DeleteUser(ctx, signed.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", deleted.Email)

	_, err = svc.DeleteUser(ctx, signed.User.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
