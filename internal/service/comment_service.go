package service

import (
	"context"
	"strings"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

const (
	msgCommentRequired = "Comment text is required"
	msgPostIDRequired  = "Post ID is required"
	msgCommentNotFound = "Comment not found"
)

// CommentService describes comment operations.
type CommentService interface {
	Create(ctx context.Context, postID, text string) (*domain.Comment, error)
	Update(ctx context.Context, id, text string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{comments: comments, posts: posts}
}

func (s *commentService) Create(ctx context.Context, postID, text string) (*domain.Comment, error) {
	actor, err := auth.Actor(ctx)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation(msgCommentRequired)
	}
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperr.Validation(msgPostIDRequired)
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, notFoundOr(err, msgPostNotFound, "get post")
	}

	comment := &domain.Comment{
		Comment: text,
		Author:  actor.Username,
		PostID:  postID,
		UserID:  actor.ID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperr.Internal(err, "create comment")
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, id, text string) (*domain.Comment, error) {
	if _, err := s.owned(ctx, id); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation(msgCommentRequired)
	}

	updated, err := s.comments.UpdateText(ctx, id, text)
	if err != nil {
		return nil, notFoundOr(err, msgCommentNotFound, "update comment")
	}
	return updated, nil
}

func (s *commentService) Delete(ctx context.Context, id string) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return notFoundOr(err, msgCommentNotFound, "delete comment")
	}
	return nil
}

func (s *commentService) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, apperr.Internal(err, "list comments")
	}
	return comments, nil
}

func (s *commentService) owned(ctx context.Context, id string) (*domain.Comment, error) {
	if _, err := auth.Actor(ctx); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgCommentNotFound, "get comment")
	}
	if _, err := auth.RequireOwner(ctx, comment.UserID, auth.MsgNotCommentOwner); err != nil {
		return nil, err
	}
	return comment, nil
}
