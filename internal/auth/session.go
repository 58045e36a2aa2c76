package auth

import (
	"context"
	"errors"
	"strings"

	"blog-server/internal/apperr"
	"blog-server/internal/domain"
	"blog-server/internal/repository"
)

// Messages returned to clients when a session is rejected.
const (
	MsgNoToken      = "No token provided."
	MsgInvalidToken = "Invalid or expired token."
	MsgUserMissing  = "User no longer exists."
)

// Outcome names the terminal state a session check ended in.
type Outcome string

const (
	OutcomeNoToken       Outcome = "no_token"
	OutcomeInvalidToken  Outcome = "invalid_token"
	OutcomeUserMissing   Outcome = "user_missing"
	OutcomeAuthenticated Outcome = "authenticated"
	OutcomeLookupFailed  Outcome = "lookup_failed"
)

// UserFinder resolves the user a token points at.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticator turns a raw session token into a verified user.
// It keeps no state between calls: a token is accepted as often as it is
// presented until it expires or its user disappears.
type Authenticator struct {
	tokens *TokenCodec
	users  UserFinder
}

func NewAuthenticator(tokens *TokenCodec, users UserFinder) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate runs the session checks in order: token present, token
// verifies, user still exists. The returned user has no password hash.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.User, Outcome, error) {
	if strings.TrimSpace(token) == "" {
		return nil, OutcomeNoToken, apperr.Unauthenticated(MsgNoToken)
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, OutcomeInvalidToken, apperr.Unauthenticated(MsgInvalidToken)
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, OutcomeUserMissing, apperr.Unauthenticated(MsgUserMissing)
		}
		return nil, OutcomeLookupFailed, apperr.Internal(err, "resolve session user")
	}

	return user.Sanitized(), OutcomeAuthenticated, nil
}
