package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/apperr"
	"blog-server/internal/service"
)

func TestComments(t *testing.T) {
	e := newEnv(t)
	alice, asAlice := e.register(t, "alice")
	bob, asBob := e.register(t, "bob")

	post, err := e.posts.Create(asAlice, service.PostInput{Title: "Talk", Description: "d"}, pngUpload())
	require.NoError(t, err)

	first, err := e.comments.Create(asBob, post.ID, "  first!  ")
	require.NoError(t, err)
	assert.Equal(t, "first!", first.Comment)
	assert.Equal(t, "bob", first.Author)
	assert.Equal(t, bob.ID, first.UserID)

	_, err = e.comments.Create(asAlice, post.ID, "thanks")
	require.NoError(t, err)

	listed, err := e.comments.ListByPost(context.Background(), post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, alice.ID, listed[1].UserID)

	t.Run("validation", func(t *testing.T) {
		_, err := e.comments.Create(asBob, post.ID, " ")
		assert.Equal(t, "Comment text is required", apperr.PublicMessage(err))

		_, err = e.comments.Create(asBob, "missing-post", "hi")
		assert.Equal(t, 404, apperr.Status(err))
		assert.Equal(t, "Post not found", apperr.PublicMessage(err))
	})

	t.Run("only the author edits", func(t *testing.T) {
		_, err := e.comments.Update(asAlice, first.ID, "edited by alice")
		assert.Equal(t, 403, apperr.Status(err))

		err = e.comments.Delete(asAlice, first.ID)
		assert.Equal(t, 403, apperr.Status(err))

		updated, err := e.comments.Update(asBob, first.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Comment)

		require.NoError(t, e.comments.Delete(asBob, first.ID))
		err = e.comments.Delete(asBob, first.ID)
		assert.Equal(t, 404, apperr.Status(err))
	})
}
