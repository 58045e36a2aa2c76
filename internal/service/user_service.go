package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

// RegisterInput is the payload of a sign-up.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ProfileInput carries the optional fields of a profile update. Empty fields
// are left untouched.
type ProfileInput struct {
	Username string
	Email    string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*domain.User, error)
	UpdateProfilePicture(ctx context.Context, id string, upload domain.Upload) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	hasher *auth.Hasher
	tokens *auth.TokenCodec
	images *ImageStore
	log    logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepository,
	posts repository.PostRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenCodec,
	images *ImageStore,
	log logrus.FieldLogger,
) UserService {
	return &userService{
		users:  users,
		posts:  posts,
		hasher: hasher,
		tokens: tokens,
		images: images,
		log:    log,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := cleanEmail(input.Email)
	password := input.Password

	if err := requireAll(msgAllFieldsRequired, username, email, password); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict(msgEmailInUse)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err, "lookup email")
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(err, "hash password")
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateUserError(err, "create user")
	}

	return user.Sanitized(), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = cleanEmail(email)
	if err := requireAll(msgLoginFieldsMissing, email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFoundLogin)
		}
		return nil, apperr.Internal(err, "lookup email")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err, "issue token")
	}

	return &Session{User: user.Sanitized(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "get user")
	}
	return user.Sanitized(), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "get user by username")
	}
	return user.Sanitized(), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateProfile applies a partial update to the caller's own account. A new
// username is copied onto the user's posts in a second write; posts may show
// the old name until that write lands.
func (s *userService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*domain.User, error) {
	if _, err := auth.RequireOwner(ctx, id, msgNotAllowedUpdate); err != nil {
		return nil, err
	}

	var patch domain.UserPatch

	if input.Password != "" {
		if err := validatePassword(input.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, apperr.Internal(err, "hash password")
		}
		patch.PasswordHash = &hash
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		patch.Username = &username
	}

	if email := cleanEmail(input.Email); email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, duplicateUserError(err, "update user")
	}

	if patch.Username != nil {
		changed, err := s.posts.UpdateUsername(ctx, updated.ID, updated.Username)
		if err != nil {
			s.log.WithError(err).WithField("user_id", updated.ID).Warn("username not propagated to posts")
			return nil, apperr.Internal(err, "propagate username")
		}
		s.log.WithFields(logrus.Fields{"user_id": updated.ID, "posts": changed}).Debug("username propagated")
	}

	return updated.Sanitized(), nil
}

func (s *userService) UpdateProfilePicture(ctx context.Context, id string, upload domain.Upload) (*domain.User, error) {
	if _, err := auth.RequireOwner(ctx, id, msgNotAllowedUpdate); err != nil {
		return nil, err
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgUserNotFound, "get user")
	}

	key, err := s.images.Save(ctx, FolderProfiles, upload)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, domain.UserPatch{ProfilePic: &key})
	if err != nil {
		s.removeImage(ctx, key)
		return nil, notFoundOr(err, msgUserNotFound, "update profile picture")
	}

	s.removeImage(ctx, current.ProfilePic)
	return updated.Sanitized(), nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if _, err := auth.RequireOwner(ctx, id, msgNotAllowedDelete); err != nil {
		return err
	}

	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, msgUserNotFound, "get user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return notFoundOr(err, msgUserNotFound, "delete user")
	}

	s.removeImage(ctx, current.ProfilePic)
	return nil
}

func (s *userService) removeImage(ctx context.Context, key string) {
	if err := s.images.Remove(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("orphaned image not removed")
	}
}

func cleanEmail(email string) string {
	return strings.TrimSpace(email)
}

func duplicateUserError(err error, op string) error {
	switch field, _ := repository.DuplicateField(err); field {
	case "email":
		return apperr.Conflict(msgEmailInUse)
	case "username":
		return apperr.Conflict(msgUsernameInUse)
	}
	return apperr.Internal(err, op)
}

func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err, op)
}
