package service_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-server/internal/apperr"
	"blog-server/internal/service"
	"blog-server/internal/storage/storagetest"
)

func TestImageStoreOpen(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewMemory()
	images := service.NewImageStore(store, "uploads", 1024)

	key, err := images.Save(ctx, service.FolderPosts, *pngUpload())
	require.NoError(t, err)

	body, info, err := images.Open(ctx, key)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", info.ContentType)

	require.NoError(t, store.Put(ctx, "private/backup.db", bytes.NewReader([]byte("secret")), 6, "application/octet-stream"))
	require.NoError(t, store.Put(ctx, "uploads/other/x.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))

	for _, outside := range []string{"private/backup.db", "uploads/other/x.png", "uploads/posts/", "uploads/postsx/a.png"} {
		_, _, err := images.Open(ctx, outside)
		require.Error(t, err, outside)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound), outside)
	}
}
