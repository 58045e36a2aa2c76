package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

const (
	msgTitleDescriptionRequired = "Title and description are required"
	msgPhotoRequired            = "Photo is required."
	msgTitleTaken               = "A post with this title already exists"
	msgTitleNotSluggable        = "Title must contain letters or digits"
	msgPostNotFound             = "Post not found"
)

// PostInput is the payload of a new post. The owner is always the caller.
type PostInput struct {
	Title       string
	Description string
	Categories  []string
}

// PostUpdate carries the optional fields of a post edit. Nil means untouched.
type PostUpdate struct {
	Title       *string
	Description *string
	Categories  []string
	// SetCategories distinguishes an empty category list from an absent one.
	SetCategories bool
}

// PostService describes post operations.
type PostService interface {
	Create(ctx context.Context, input PostInput, photo *domain.Upload) (*domain.Post, error)
	List(ctx context.Context, search string) ([]domain.Post, error)
	Get(ctx context.Context, id string) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	Update(ctx context.Context, id string, update PostUpdate) (*domain.Post, error)
	UpdatePhoto(ctx context.Context, id string, photo domain.Upload) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
}

type postService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	images   *ImageStore
	log      logrus.FieldLogger
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	images *ImageStore,
	log logrus.FieldLogger,
) PostService {
	return &postService{
		posts:    posts,
		comments: comments,
		users:    users,
		images:   images,
		log:      log,
	}
}

func (s *postService) Create(ctx context.Context, input PostInput, photo *domain.Upload) (*domain.Post, error) {
	actor, err := auth.Actor(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := requireAll(msgTitleDescriptionRequired, title, description); err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, apperr.Validation(msgPhotoRequired)
	}
	postSlug, err := slugFor(title)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, FolderPosts, *photo)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:       title,
		Description: description,
		Username:    actor.Username,
		UserID:      actor.ID,
		Categories:  cleanCategories(input.Categories),
		Photo:       key,
		Slug:        postSlug,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImage(ctx, key)
		return nil, duplicatePostError(err, "create post")
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, search string) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, apperr.Internal(err, "list posts")
	}
	return posts, nil
}

// Get returns a post with its username refreshed from the owner's account,
// which hides a pending rename propagation.
func (s *postService) Get(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound, "get post")
	}

	owner, err := s.users.GetByID(ctx, post.UserID)
	switch {
	case err == nil:
		post.Username = owner.Username
	case !errors.Is(err, repository.ErrNotFound):
		s.log.WithError(err).WithField("post_id", post.ID).Warn("post owner lookup failed")
	}
	return post, nil
}

func (s *postService) GetBySlug(ctx context.Context, postSlug string) (*domain.Post, error) {
	post, err := s.posts.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound, "get post by slug")
	}
	return post, nil
}

func (s *postService) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list user posts")
	}
	return posts, nil
}

func (s *postService) Update(ctx context.Context, id string, update PostUpdate) (*domain.Post, error) {
	post, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperr.Validation(msgTitleDescriptionRequired)
		}
		if title != post.Title {
			postSlug, err := slugFor(title)
			if err != nil {
				return nil, err
			}
			post.Title = title
			post.Slug = postSlug
		}
	}
	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, apperr.Validation(msgTitleDescriptionRequired)
		}
		post.Description = description
	}
	if update.SetCategories {
		post.Categories = cleanCategories(update.Categories)
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound)
		}
		return nil, duplicatePostError(err, "update post")
	}
	return post, nil
}

func (s *postService) UpdatePhoto(ctx context.Context, id string, photo domain.Upload) (*domain.Post, error) {
	post, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, FolderPosts, photo)
	if err != nil {
		return nil, err
	}

	previous := post.Photo
	post.Photo = key
	if err := s.posts.Update(ctx, post); err != nil {
		s.removeImage(ctx, key)
		return nil, notFoundOr(err, msgPostNotFound, "update post photo")
	}

	s.removeImage(ctx, previous)
	return post, nil
}

// Delete removes the post, then its comments and image. Failures after the
// post is gone are logged rather than returned.
func (s *postService) Delete(ctx context.Context, id string) error {
	post, err := s.owned(ctx, id)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return notFoundOr(err, msgPostNotFound, "delete post")
	}

	if removed, err := s.comments.DeleteByPost(ctx, post.ID); err != nil {
		s.log.WithError(err).WithField("post_id", post.ID).Warn("comments of deleted post not removed")
	} else if removed > 0 {
		s.log.WithFields(logrus.Fields{"post_id": post.ID, "comments": removed}).Debug("comments removed with post")
	}

	s.removeImage(ctx, post.Photo)
	return nil
}

func (s *postService) owned(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := auth.Actor(ctx); err != nil {
		return nil, err
	}
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgPostNotFound, "get post")
	}
	if _, err := auth.RequireOwner(ctx, post.UserID, auth.MsgNotPostOwner); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) removeImage(ctx context.Context, key string) {
	if err := s.images.Remove(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("orphaned image not removed")
	}
}

func slugFor(title string) (string, error) {
	value := slug.Make(title)
	if value == "" {
		return "", apperr.Validation(msgTitleNotSluggable)
	}
	return value, nil
}

func cleanCategories(categories []string) []string {
	cleaned := make([]string, 0, len(categories))
	for _, category := range categories {
		if category = strings.TrimSpace(category); category != "" {
			cleaned = append(cleaned, category)
		}
	}
	return cleaned
}

func duplicatePostError(err error, op string) error {
	if field, ok := repository.DuplicateField(err); ok && field == "slug" {
		return apperr.Conflict(msgTitleTaken)
	}
	return apperr.Internal(err, op)
}
