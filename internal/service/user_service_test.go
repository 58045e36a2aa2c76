package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
	"blog-server/internal/service"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a hash and hides it", func(t *testing.T) {
		e := newEnv(t)
		user, err := e.users.Register(ctx, service.RegisterInput{Username: "alice", Email: "a@x.io", Password: "secret1"})
		require.NoError(t, err)
		assert.Empty(t, user.PasswordHash)
		assert.NotEmpty(t, user.ID)

		stored, err := e.userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", stored.PasswordHash)
		assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))
	})

	t.Run("emails differing in case are distinct accounts", func(t *testing.T) {
		e := newEnv(t)
		upper, err := e.users.Register(ctx, service.RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Alice@Example.com", upper.Email)

		lower, err := e.users.Register(ctx, service.RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEqual(t, upper.ID, lower.ID)

		session, err := e.users.Login(ctx, "Alice@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, upper.ID, session.User.ID)
	})

	tests := []struct {
		name    string
		input   service.RegisterInput
		code    string
		message string
	}{
		{"missing field", service.RegisterInput{Username: "bob", Email: "b@x.io"}, apperr.CodeValidation, "All fields are required."},
		{"bad email", service.RegisterInput{Username: "bob", Email: "nope", Password: "secret1"}, apperr.CodeValidation, "Invalid email format"},
		{"short password", service.RegisterInput{Username: "bob", Email: "b@x.io", Password: "abc"}, apperr.CodeValidation, "Password must be at least 6 characters"},
		{"username too short", service.RegisterInput{Username: "bo", Email: "b@x.io", Password: "secret1"}, apperr.CodeValidation, "Username must be between 3 and 20 characters"},
		{"username with space", service.RegisterInput{Username: "bob smith", Email: "b@x.io", Password: "secret1"}, apperr.CodeValidation, "Username cannot contain spaces"},
		{"username uppercase", service.RegisterInput{Username: "Bob", Email: "b@x.io", Password: "secret1"}, apperr.CodeValidation, "Username must be lowercase. Please enter your username in all lowercase letters."},
		{"email taken", service.RegisterInput{Username: "bob", Email: "a@x.io", Password: "secret1"}, apperr.CodeConflict, "Email already in use."},
		{"username taken", service.RegisterInput{Username: "alice", Email: "other@x.io", Password: "secret1"}, apperr.CodeConflict, "Username already in use."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.users.Register(ctx, service.RegisterInput{Username: "alice", Email: "a@x.io", Password: "secret1"})
			require.NoError(t, err)

			_, err = e.users.Register(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, tt.code), "got %v", err)
			assert.Equal(t, tt.message, apperr.PublicMessage(err))
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice, _ := e.register(t, "alice")

	t.Run("issues a token for the account", func(t *testing.T) {
		session, err := e.users.Login(ctx, "alice@example.com", "secret1")
		require.NoError(t, err)
		assert.Empty(t, session.User.PasswordHash)
		assert.Equal(t, alice.ID, session.User.ID)

		claims, err := e.tokens.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		message  string
	}{
		{"missing password", "alice@example.com", "", 400, "Please provide email and password."},
		{"unknown email", "ghost@example.com", "secret1", 404, "User not found."},
		{"wrong password", "alice@example.com", "wrong-pass", 401, "Invalid credentials."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.users.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperr.Status(err))
			assert.Equal(t, tt.message, apperr.PublicMessage(err))
		})
	}
}

func TestUpdateProfile(t *testing.T) {
	t.Run("rename propagates to posts", func(t *testing.T) {
		e := newEnv(t)
		alice, asAlice := e.register(t, "alice")
		post, err := e.posts.Create(asAlice, service.PostInput{Title: "Hello", Description: "world"}, pngUpload())
		require.NoError(t, err)

		updated, err := e.users.UpdateProfile(asAlice, alice.ID, service.ProfileInput{Username: "alicia"})
		require.NoError(t, err)
		assert.Equal(t, "alicia", updated.Username)

		stored, err := e.postRepo.Get(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, "alicia", stored.Username)
		assert.Equal(t, alice.ID, stored.UserID)
	})

	t.Run("password change rehashes", func(t *testing.T) {
		e := newEnv(t)
		alice, asAlice := e.register(t, "alice")
		_, err := e.users.UpdateProfile(asAlice, alice.ID, service.ProfileInput{Password: "another1"})
		require.NoError(t, err)

		_, err = e.users.Login(context.Background(), "alice@example.com", "another1")
		require.NoError(t, err)
	})

	t.Run("other user is forbidden and nothing changes", func(t *testing.T) {
		e := newEnv(t)
		alice, _ := e.register(t, "alice")
		_, asBob := e.register(t, "bob")

		_, err := e.users.UpdateProfile(asBob, alice.ID, service.ProfileInput{Username: "hacked"})
		require.Error(t, err)
		assert.Equal(t, 403, apperr.Status(err))
		assert.Equal(t, "You are not allowed to update this user", apperr.PublicMessage(err))

		stored, err := e.userRepo.GetByID(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Username)
	})

	t.Run("no identity is unauthenticated", func(t *testing.T) {
		e := newEnv(t)
		alice, _ := e.register(t, "alice")
		_, err := e.users.UpdateProfile(context.Background(), alice.ID, service.ProfileInput{Username: "x"})
		assert.Equal(t, 401, apperr.Status(err))
	})

	t.Run("validation", func(t *testing.T) {
		e := newEnv(t)
		alice, asAlice := e.register(t, "alice")
		e.register(t, "bob")

		cases := map[string]service.ProfileInput{
			"Password must be at least 6 characters":       {Password: "abc"},
			"Username must be between 3 and 20 characters": {Username: strings.Repeat("a", 21)},
			"Invalid email format":                         {Email: "not-an-email"},
			"Username already in use.":                     {Username: "bob"},
			"Email already in use.":                        {Email: "bob@example.com"},
		}
		for message, input := range cases {
			_, err := e.users.UpdateProfile(asAlice, alice.ID, input)
			require.Error(t, err, message)
			assert.Equal(t, message, apperr.PublicMessage(err))
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	e := newEnv(t)
	alice, asAlice := e.register(t, "alice")
	_, asBob := e.register(t, "bob")

	err := e.users.Delete(asBob, alice.ID)
	require.Error(t, err)
	assert.Equal(t, "You can only delete your own account", apperr.PublicMessage(err))

	require.NoError(t, e.users.Delete(asAlice, alice.ID))
	_, err = e.users.GetByID(context.Background(), alice.ID)
	assert.Equal(t, 404, apperr.Status(err))
}

func TestGetByUsername(t *testing.T) {
	e := newEnv(t)
	alice, _ := e.register(t, "alice")

	found, err := e.users.GetByUsername(context.Background(), "ALICE")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
	assert.Empty(t, found.PasswordHash)

	_, err = e.users.GetByUsername(context.Background(), "nobody")
	assert.Equal(t, "User not found", apperr.PublicMessage(err))

	all, err := e.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].PasswordHash)
}

func TestUpdateProfilePicture(t *testing.T) {
	e := newEnv(t)
	alice, asAlice := e.register(t, "alice")

	first, err := e.users.UpdateProfilePicture(asAlice, alice.ID, *pngUpload())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ProfilePic, "uploads/profiles/"))
	assert.True(t, strings.HasSuffix(first.ProfilePic, ".png"))
	assert.True(t, e.store.Has(first.ProfilePic))

	second, err := e.users.UpdateProfilePicture(asAlice, alice.ID, *pngUpload())
	require.NoError(t, err)
	assert.False(t, e.store.Has(first.ProfilePic))
	assert.True(t, e.store.Has(second.ProfilePic))

	_, err = e.users.UpdateProfilePicture(asAlice, alice.ID, domain.Upload{
		Filename: "fake.png",
		Size:     11,
		Content:  bytes.NewReader([]byte("hello world")),
	})
	require.Error(t, err)
	assert.Equal(t, "Only JPEG, PNG, GIF and WEBP images are allowed.", apperr.PublicMessage(err))

	_, asBob := e.register(t, "bob")
	_, err = e.users.UpdateProfilePicture(asBob, alice.ID, *pngUpload())
	assert.Equal(t, 403, apperr.Status(err))
}
