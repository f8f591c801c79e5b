package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/holdings/internal/models"
)

func TestSaveAndGetUser(t *testing.T) {
	m := testManager(t)
	store := m.InternalStore()
	ctx := context.Background()

	user := &models.InternalUser{
		UserID:       "user1",
		Email:        "Alice@Example.com",
		PasswordHash: "hash123",
		Role:         models.RoleUser,
		CreatedAt:    time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.SaveUser(ctx, user))

	got, err := store.GetUser(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, "user1", got.UserID)
	assert.Equal(t, models.RoleUser, got.Role)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user1", byEmail.UserID)

	ids, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user1"}, ids)

	require.NoError(t, store.DeleteUser(ctx, "user1"))
	_, err = store.GetUser(ctx, "user1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestGetUserByEmailNotFound(t *testing.T) {
	m := testManager(t)
	_, err := m.InternalStore().GetUserByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestUserKV(t *testing.T) {
	m := testManager(t)
	store := m.InternalStore()
	ctx := context.Background()

	require.NoError(t, store.SetUserKV(ctx, "user1", "display_currency", "USD"))
	require.NoError(t, store.SetUserKV(ctx, "user1", "display_currency", "EUR"))
	require.NoError(t, store.SetUserKV(ctx, "user1", "theme", "dark"))

	kv, err := store.GetUserKV(ctx, "user1", "display_currency")
	require.NoError(t, err)
	assert.Equal(t, "EUR", kv.Value)
	assert.Equal(t, 2, kv.Version)

	list, err := store.ListUserKV(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "display_currency", list[0].Key)

	_, err = store.GetUserKV(ctx, "user1", "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
