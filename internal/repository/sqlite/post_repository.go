package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

const (
	createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	username TEXT NOT NULL,
	user_id TEXT NOT NULL,
	categories TEXT NOT NULL DEFAULT '[]',
	photo TEXT NOT NULL DEFAULT '',
	slug TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createPostsUserIndex = `CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id);`

	selectPost = `
SELECT id, title, description, username, user_id, categories, photo, slug, created_at, updated_at
FROM posts`
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPostsUserIndex); err != nil {
		return fmt.Errorf("create posts user index: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	categories, err := encodeCategories(post.Categories)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
INSERT INTO posts (id, title, description, username, user_id, categories, photo, slug, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Description,
		post.Username,
		post.UserID,
		categories,
		post.Photo,
		post.Slug,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		post.ID = ""
		if dup := asDuplicate(err, "posts"); dup != nil {
			return dup
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE id = ?`, id))
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE slug = ?`, slug))
}

func (r *PostRepository) List(ctx context.Context, search string) ([]domain.Post, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return r.queryPosts(ctx, selectPost+` ORDER BY created_at DESC, rowid DESC`)
	}
	pattern := likePattern(search)
	return r.queryPosts(ctx, selectPost+`
WHERE LOWER(title) LIKE ? ESCAPE '\'
	OR LOWER(description) LIKE ? ESCAPE '\'
	OR EXISTS (
		SELECT 1 FROM json_each(posts.categories)
		WHERE LOWER(json_each.value) LIKE ? ESCAPE '\'
	)
ORDER BY created_at DESC, rowid DESC`, pattern, pattern, pattern)
}

func (r *PostRepository) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	return r.queryPosts(ctx, selectPost+` WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	categories, err := encodeCategories(post.Categories)
	if err != nil {
		return err
	}
	post.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title = ?, description = ?, username = ?, categories = ?, photo = ?, slug = ?, updated_at = ?
WHERE id = ?`,
		post.Title,
		post.Description,
		post.Username,
		categories,
		post.Photo,
		post.Slug,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		if dup := asDuplicate(err, "posts"); dup != nil {
			return dup
		}
		return fmt.Errorf("update post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) UpdateUsername(ctx context.Context, userID, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE posts SET username = ?, updated_at = ? WHERE user_id = ? AND username <> ?`,
		username, time.Now().UTC(), userID, username,
	)
	if err != nil {
		return 0, fmt.Errorf("update posts username: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("posts rows affected: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func scanPost(row scanner) (*domain.Post, error) {
	var (
		post       domain.Post
		categories string
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&post.Username,
		&post.UserID,
		&categories,
		&post.Photo,
		&post.Slug,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &post.Categories); err != nil {
		return nil, fmt.Errorf("decode post categories: %w", err)
	}
	if post.Categories == nil {
		post.Categories = []string{}
	}
	return &post, nil
}

func encodeCategories(categories []string) (string, error) {
	if categories == nil {
		categories = []string{}
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("encode post categories: %w", err)
	}
	return string(raw), nil
}
