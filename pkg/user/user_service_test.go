package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("generates a uid when none is given", func(t *testing.T) {
		repo := NewStubUserRepo()
		service := NewUserService(repo)

		created, err := service.CreateUser(ctx, User{Username: "alice"})

		require.NoError(t, err)
		assert.NotEmpty(t, created.Uid)
		assert.Equal(t, 1, created.Id)
	})

	t.Run("keeps an explicit uid", func(t *testing.T) {
		repo := NewStubUserRepo()
		service := NewUserService(repo)

		created, err := service.CreateUser(ctx, User{Uid: "fixed-uid", Username: "alice"})

		require.NoError(t, err)
		assert.Equal(t, "fixed-uid", created.Uid)
	})
}

func TestUserService_GetCurrentUser(t *testing.T) {
	repo := NewStubUserRepo()
	service := NewUserService(repo)
	created, err := service.CreateUser(context.Background(), User{Username: "alice"})
	require.NoError(t, err)

	t.Run("resolves the user from the context", func(t *testing.T) {
		ctx := WithUser(context.Background(), created)

		current, err := service.GetCurrentUser(ctx)

		require.NoError(t, err)
		assert.Equal(t, "alice", current.Username)
	})

	t.Run("fails without a user in the context", func(t *testing.T) {
		_, err := service.GetCurrentUser(context.Background())

		assert.ErrorIs(t, err, ErrNoUser)
	})
}
