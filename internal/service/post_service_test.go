package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
	"blog-server/internal/service"
)

func strPtr(s string) *string { return &s }

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	alice, asAlice := e.register(t, "alice")

	post, err := e.posts.Create(asAlice, service.PostInput{
		Title:       "  Hello, World!  ",
		Description: "first post",
		Categories:  []string{"go", " ", "web "},
	}, pngUpload())
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", post.Title)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, alice.ID, post.UserID)
	assert.Equal(t, "alice", post.Username)
	assert.Equal(t, []string{"go", "web"}, post.Categories)
	assert.True(t, e.store.Has(post.Photo))

	t.Run("duplicate title", func(t *testing.T) {
		_, err := e.posts.Create(asAlice, service.PostInput{Title: "hello world", Description: "again"}, pngUpload())
		require.Error(t, err)
		assert.Equal(t, 409, apperr.Status(err))
		assert.Equal(t, "A post with this title already exists", apperr.PublicMessage(err))
		assert.Equal(t, 1, e.store.Len())
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := e.posts.Create(asAlice, service.PostInput{Title: "x"}, pngUpload())
		assert.Equal(t, "Title and description are required", apperr.PublicMessage(err))

		_, err = e.posts.Create(asAlice, service.PostInput{Title: "x", Description: "y"}, nil)
		assert.Equal(t, "Photo is required.", apperr.PublicMessage(err))
	})

	t.Run("oversized photo", func(t *testing.T) {
		big := bytes.Repeat([]byte{0}, 2048)
		_, err := e.posts.Create(asAlice, service.PostInput{Title: "big", Description: "y"}, &domain.Upload{
			Filename: "big.png",
			Size:     int64(len(big)),
			Content:  bytes.NewReader(big),
		})
		assert.Equal(t, 413, apperr.Status(err))
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := e.posts.Create(context.Background(), service.PostInput{Title: "anon", Description: "y"}, pngUpload())
		assert.Equal(t, 401, apperr.Status(err))
	})
}

func TestPostOwnership(t *testing.T) {
	e := newEnv(t)
	_, asAlice := e.register(t, "alice")
	_, asBob := e.register(t, "bob")

	post, err := e.posts.Create(asAlice, service.PostInput{Title: "Mine", Description: "d"}, pngUpload())
	require.NoError(t, err)

	_, err = e.posts.Update(asBob, post.ID, service.PostUpdate{Title: strPtr("Stolen")})
	require.Error(t, err)
	assert.Equal(t, 403, apperr.Status(err))

	err = e.posts.Delete(asBob, post.ID)
	assert.Equal(t, 403, apperr.Status(err))

	_, err = e.posts.UpdatePhoto(asBob, post.ID, *pngUpload())
	assert.Equal(t, 403, apperr.Status(err))

	stored, err := e.posts.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)

	updated, err := e.posts.Update(asAlice, post.ID, service.PostUpdate{
		Title:         strPtr("Renamed Post"),
		Categories:    []string{"news"},
		SetCategories: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed-post", updated.Slug)
	assert.Equal(t, []string{"news"}, updated.Categories)
	assert.Equal(t, "d", updated.Description)

	bySlug, err := e.posts.GetBySlug(context.Background(), "renamed-post")
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)
}

func TestDeletePostCascades(t *testing.T) {
	e := newEnv(t)
	_, asAlice := e.register(t, "alice")
	_, asBob := e.register(t, "bob")

	post, err := e.posts.Create(asAlice, service.PostInput{Title: "Doomed", Description: "d"}, pngUpload())
	require.NoError(t, err)
	_, err = e.comments.Create(asBob, post.ID, "nice")
	require.NoError(t, err)

	require.NoError(t, e.posts.Delete(asAlice, post.ID))

	_, err = e.posts.Get(context.Background(), post.ID)
	assert.Equal(t, "Post not found", apperr.PublicMessage(err))

	comments, err := e.comments.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.False(t, e.store.Has(post.Photo))
}

func TestPostSearchAndListing(t *testing.T) {
	e := newEnv(t)
	alice, asAlice := e.register(t, "alice")
	_, asBob := e.register(t, "bob")

	_, err := e.posts.Create(asAlice, service.PostInput{Title: "Go tips", Description: "100% useful"}, pngUpload())
	require.NoError(t, err)
	_, err = e.posts.Create(asBob, service.PostInput{Title: "Rust notes", Description: "borrowing", Categories: []string{"Systems"}}, pngUpload())
	require.NoError(t, err)

	all, err := e.posts.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Rust notes", all[0].Title)

	found, err := e.posts.List(context.Background(), "systems")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Rust notes", found[0].Title)

	literal, err := e.posts.List(context.Background(), "0%")
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "Go tips", literal[0].Title)

	none, err := e.posts.List(context.Background(), ".*")
	require.NoError(t, err)
	assert.Empty(t, none)

	mine, err := e.posts.ListByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go tips", mine[0].Title)
}
