package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
	"blog-server/internal/repository/sqlite"
	"blog-server/internal/service"
	"blog-server/internal/storage/storagetest"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type env struct {
	users    service.UserService
	posts    service.PostService
	comments service.CommentService
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	tokens   *auth.TokenCodec
	store    *storagetest.Memory
	logs     *test.Hook
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, postRepo.Init(ctx))
	require.NoError(t, commentRepo.Init(ctx))

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenCodec("test-secret", time.Hour)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	store := storagetest.NewMemory()
	images := service.NewImageStore(store, "uploads", 1024)

	return &env{
		users:    service.NewUserService(userRepo, postRepo, hasher, tokens, images, logger),
		posts:    service.NewPostService(postRepo, commentRepo, userRepo, images, logger),
		comments: service.NewCommentService(commentRepo, postRepo),
		userRepo: userRepo,
		postRepo: postRepo,
		tokens:   tokens,
		store:    store,
		logs:     hook,
	}
}

// register creates an account and returns a context acting as that user.
func (e *env) register(t *testing.T, username string) (*domain.User, context.Context) {
	t.Helper()
	user, err := e.users.Register(context.Background(), service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return user, auth.WithUser(context.Background(), user)
}

func pngUpload() *domain.Upload {
	return &domain.Upload{Filename: "a.png", Size: int64(len(pngHeader)), Content: bytes.NewReader(pngHeader)}
}
