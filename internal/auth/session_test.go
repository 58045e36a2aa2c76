package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

type fakeFinder struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeFinder) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func setupAuthenticator(t *testing.T) (*auth.Authenticator, *auth.TokenCodec, *fakeFinder) {
	t.Helper()
	codec, err := auth.NewTokenCodec("test-secret", time.Hour)
	require.NoError(t, err)
	finder := &fakeFinder{users: map[string]*domain.User{
		"u-1": {ID: "u-1", Username: "alice", Email: "a@example.com", PasswordHash: "$2a$hash"},
	}}
	return auth.NewAuthenticator(codec, finder), codec, finder
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		a, _, _ := setupAuthenticator(t)
		user, outcome, err := a.Authenticate(ctx, "")
		assert.Nil(t, user)
		assert.Equal(t, auth.OutcomeNoToken, outcome)
		assert.Equal(t, auth.MsgNoToken, apperr.PublicMessage(err))
		assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	})

	t.Run("invalid token", func(t *testing.T) {
		a, _, _ := setupAuthenticator(t)
		_, outcome, err := a.Authenticate(ctx, "garbage")
		assert.Equal(t, auth.OutcomeInvalidToken, outcome)
		assert.Equal(t, auth.MsgInvalidToken, apperr.PublicMessage(err))
	})

	t.Run("user missing", func(t *testing.T) {
		a, codec, finder := setupAuthenticator(t)
		tok, _, err := codec.Issue(finder.users["u-1"])
		require.NoError(t, err)
		delete(finder.users, "u-1")

		_, outcome, err := a.Authenticate(ctx, tok)
		assert.Equal(t, auth.OutcomeUserMissing, outcome)
		assert.Equal(t, auth.MsgUserMissing, apperr.PublicMessage(err))
		assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		a, codec, finder := setupAuthenticator(t)
		tok, _, err := codec.Issue(finder.users["u-1"])
		require.NoError(t, err)
		finder.err = errors.New("connection reset")

		_, outcome, err := a.Authenticate(ctx, tok)
		assert.Equal(t, auth.OutcomeLookupFailed, outcome)
		assert.True(t, apperr.Is(err, apperr.CodeInternal))
	})

	t.Run("authenticated strips hash and replays", func(t *testing.T) {
		a, codec, finder := setupAuthenticator(t)
		tok, _, err := codec.Issue(finder.users["u-1"])
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			user, outcome, err := a.Authenticate(ctx, tok)
			require.NoError(t, err)
			assert.Equal(t, auth.OutcomeAuthenticated, outcome)
			assert.Equal(t, "u-1", user.ID)
			assert.Empty(t, user.PasswordHash)
		}
		assert.NotEmpty(t, finder.users["u-1"].PasswordHash)
	})
}

func TestRequireOwner(t *testing.T) {
	ctx := auth.WithUser(context.Background(), &domain.User{ID: "u-1"})

	t.Run("owner passes", func(t *testing.T) {
		actor, err := auth.RequireOwner(ctx, "u-1", "nope")
		require.NoError(t, err)
		assert.Equal(t, "u-1", actor.ID)
	})

	t.Run("other owner is forbidden", func(t *testing.T) {
		_, err := auth.RequireOwner(ctx, "u-2", "nope")
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
		assert.Equal(t, "nope", apperr.PublicMessage(err))
	})

	t.Run("empty owner is forbidden", func(t *testing.T) {
		_, err := auth.RequireOwner(ctx, "", "nope")
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	})

	t.Run("no identity is unauthenticated", func(t *testing.T) {
		_, err := auth.RequireOwner(context.Background(), "u-1", "nope")
		assert.True(t, apperr.Is(err, apperr.CodeUnauthenticated))
	})
}
