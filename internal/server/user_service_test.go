package server

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/jonathan/cv-optimizer/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupTestUserService(t *testing.T) (*UserService, *memStore) {
	t.Helper()
	store := newMemStore()
	return NewUserService(store, &config.PasswordConfig{BcryptCost: bcrypt.MinCost}), store
}

func TestPublicUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		dbUser := &db.User{
			ID:           uuid.New(),
			Name:         "John Doe",
			Email:        "john@example.com",
			PasswordHash: "hashed-password",
			PasswordSet:  true,
		}
		u := publicUser(dbUser)
		require.NotNil(t, u)
		assert.Equal(t, dbUser.ID, u.ID)
		assert.Equal(t, dbUser.Name, u.Name)
		assert.Equal(t, dbUser.Email, u.Email)
	})

	t.Run("nil user", func(t *testing.T) {
		assert.Nil(t, publicUser(nil))
	})
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	service, store := setupTestUserService(t)

	user, err := service.Register(ctx, "  Jane Doe ", " Jane@Example.COM ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane Doe", user.Name)

	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.PasswordSet)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct-horse")))

	_, err = service.Register(ctx, "", "jane@example.com", "another-password")
	var exists *ErrEmailAlreadyExists
	assert.ErrorAs(t, err, &exists)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	service, store := setupTestUserService(t)
	registered, err := service.Register(ctx, "Jane", "jane@example.com", "correct-horse")
	require.NoError(t, err)

	user, err := service.Login(ctx, "JANE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	var badCreds *ErrInvalidCredentials
	_, err = service.Login(ctx, "jane@example.com", "nope")
	assert.ErrorAs(t, err, &badCreds)
	_, err = service.Login(ctx, "other@example.com", "correct-horse")
	assert.ErrorAs(t, err, &badCreds)

	t.Run("account without password", func(t *testing.T) {
		_, err := store.CreateUser(ctx, "No Password", "nopass@example.com", "")
		require.NoError(t, err)
		_, err = service.Login(ctx, "nopass@example.com", "")
		assert.ErrorAs(t, err, &badCreds)
	})
}

func TestUserService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestUserService(t)
	user, err := service.Register(ctx, "Jane", "jane@example.com", "correct-horse")
	require.NoError(t, err)

	var mismatch *ErrPasswordMismatch
	assert.ErrorAs(t, service.UpdatePassword(ctx, user.ID, "wrong", "new-password-1"), &mismatch)

	require.NoError(t, service.UpdatePassword(ctx, user.ID, "correct-horse", "new-password-1"))
	_, err = service.Login(ctx, "jane@example.com", "new-password-1")
	assert.NoError(t, err)

	var missing *ErrUserNotFound
	assert.ErrorAs(t, service.UpdatePassword(ctx, uuid.New(), "x", "y"), &missing)
}

func TestUserService_Get(t *testing.T) {
	ctx := context.Background()
	service, _ := setupTestUserService(t)
	user, err := service.Register(ctx, "Jane", "jane@example.com", "correct-horse")
	require.NoError(t, err)

	got, err := service.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	var missing *ErrUserNotFound
	_, err = service.Get(ctx, uuid.New())
	assert.ErrorAs(t, err, &missing)
}
