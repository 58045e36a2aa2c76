package repository

import (
	"context"

	"blog-server/internal/domain"
)

// PostRepository exposes persistence operations for posts.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	// List returns posts newest first. A non-empty search filters on title,
	// description and categories, case-insensitively and literally.
	List(ctx context.Context, search string) ([]domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	// UpdateUsername rewrites the display username of every post owned by
	// userID and returns how many posts changed.
	UpdateUsername(ctx context.Context, userID, username string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository exposes persistence operations for comments.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) error
	Get(ctx context.Context, id string) (*domain.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}
