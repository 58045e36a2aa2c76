package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

const (
	createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	comment TEXT NOT NULL,
	author TEXT NOT NULL,
	post_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createCommentsPostIndex = `CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id);`

	selectComment = `
SELECT id, comment, author, post_id, user_id, created_at, updated_at
FROM comments`
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createCommentsPostIndex); err != nil {
		return fmt.Errorf("create comments post index: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()
	comment.ID = uuid.NewString()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO comments (id, comment, author, post_id, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Comment,
		comment.Author,
		comment.PostID,
		comment.UserID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		comment.ID = ""
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) Get(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.db.QueryRowContext(ctx, selectComment+` WHERE id = ?`, id))
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectComment+` WHERE post_id = ? ORDER BY created_at ASC, rowid ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

func (r *CommentRepository) UpdateText(ctx context.Context, id, text string) (*domain.Comment, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE comments SET comment = ?, updated_at = ? WHERE id = ?`,
		text, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete post comments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("comments rows affected: %w", err)
	}
	return n, nil
}

func scanComment(row scanner) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.Comment,
		&comment.Author,
		&comment.PostID,
		&comment.UserID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
